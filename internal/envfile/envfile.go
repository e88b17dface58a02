// Package envfile optionally loads a dotenv file into the process environment.
package envfile

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DisableVar turns loading off when set to "0" or "false".
const DisableVar = "STATUSLINE_DOTENV"

// Enabled reports whether dotenv loading is switched on.
func Enabled() bool {
	v := strings.ToLower(os.Getenv(DisableVar))
	return v != "0" && v != "false"
}

// Load reads path into the environment without overriding variables that
// are already set. A missing file is not an error; loaded reports whether
// anything was read.
func Load(path string) (loaded bool, err error) {
	if path == "" || !Enabled() {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
