// Six-part record pathnames.
//
// A pathname is written /A/B/C/D/E/F/: leading and trailing slash, six
// segments, any of which may be empty. Conventionally A is the project or
// basin, B the location, C the parameter, D the block date, E the interval
// and F a version tag. Parts are trimmed on parse, so a part cannot itself
// contain a slash or keep surrounding whitespace.
package hecdss

import (
	"fmt"
	"strings"
)

// Pathname addresses one record in an archive. An empty part is absent.
type Pathname struct {
	A, B, C, D, E, F string
}

// ParsePathname parses the canonical /A/B/C/D/E/F/ form.
func ParsePathname(text string) (Pathname, error) {
	if len(text) < 2 || !strings.HasPrefix(text, "/") || !strings.HasSuffix(text, "/") {
		return Pathname{}, fmt.Errorf("%w: %q must start and end with /", ErrInvalidPathname, text)
	}
	parts := strings.Split(text[1:len(text)-1], "/")
	if len(parts) != 6 {
		return Pathname{}, fmt.Errorf("%w: %q has %d parts, want 6", ErrInvalidPathname, text, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return Pathname{parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]}, nil
}

// MustParsePathname is ParsePathname for literals known to be valid.
func MustParsePathname(text string) Pathname {
	p, err := ParsePathname(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pathname) String() string {
	return "/" + strings.Join(p.Parts(), "/") + "/"
}

// Parts returns A through F in order.
func (p Pathname) Parts() []string {
	return []string{p.A, p.B, p.C, p.D, p.E, p.F}
}

// IsZero reports whether every part is empty.
func (p Pathname) IsZero() bool {
	return p == Pathname{}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pathname) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pathname) UnmarshalText(text []byte) error {
	parsed, err := ParsePathname(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Interval reads the sampling interval from the E part. Writing a regular
// series requires it.
func (p Pathname) Interval() (Interval, error) {
	if p.E == "" {
		return Interval{}, fmt.Errorf("%w: %s", ErrMissingInterval, p)
	}
	iv, err := ParseInterval(p.E)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %s: %w", ErrMissingInterval, p, err)
	}
	return iv, nil
}
