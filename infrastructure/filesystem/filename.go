package filesystem

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SecureFilename reduces a client supplied name to a flat ASCII filename.
// It returns "" when nothing safe remains.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(name, ".", 2)[0])] {
		name = "_" + name
	}
	return name
}

// UploadFilename returns a per-request name "<uuid>_<SecureFilename(name)>",
// or just the uuid when nothing safe remains. Two uploads never share a name.
func UploadFilename(name string) string {
	id := uuid.New().String()
	if safe := SecureFilename(name); safe != "" {
		return id + "_" + safe
	}
	return id
}

// ClientFilename strips the prefix added by UploadFilename
func ClientFilename(stored string) string {
	if len(stored) > 37 && stored[36] == '_' {
		if _, err := uuid.Parse(stored[:36]); err == nil {
			return stored[37:]
		}
	}
	return stored
}
