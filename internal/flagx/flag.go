// Package flagx helps several independent flag sets share os.Args.
//
// The config loader parses the config-file flag before anything else and the
// remaining flags afterwards; each stage only sees the arguments it owns.
package flagx

import (
	"flag"
	"strings"
)

// Spec names the flags a stage owns. Valued flags consume the following
// argument when it does not look like a flag; Switches never do.
type Spec struct {
	Valued   []string
	Switches []string
}

func (s Spec) kind(name string) (valued, known bool) {
	for _, f := range s.Valued {
		if f == name {
			return true, true
		}
	}
	for _, f := range s.Switches {
		if f == name {
			return false, true
		}
	}
	return false, false
}

// FilterArgs keeps only the arguments that belong to spec, preserving order.
//
// Accepted forms: "-f value", "-f=value", "--f=value" and bare switches.
// A value is only consumed for a valued flag, so "-v -c x" keeps "-v" as a
// switch and leaves "-c x" to whoever owns it.
func FilterArgs(args []string, spec Spec) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		valued, known := spec.kind(name)
		if !known {
			continue
		}
		filtered = append(filtered, arg)

		if hasValue || !valued {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile extracts the config file path given via -c or -config.
// Other arguments are ignored; an empty string means no file was requested.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Spec{Valued: []string{"-c", "-config", "--config"}}))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
