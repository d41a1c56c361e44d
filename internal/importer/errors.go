package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPartNumber indicates the request carried no part number after trimming.
var ErrEmptyPartNumber = errors.New("part number is required")

// CategoryNotFoundError indicates the destination category path could not be
// resolved and auto-creation is disabled. Aborts the import before any write.
type CategoryNotFoundError struct {
	Path    []string
	Segment string
}

func (e *CategoryNotFoundError) Error() string {
	if len(e.Path) == 0 {
		return "no destination category selected and part creation requires one"
	}
	return fmt.Sprintf("destination category %q has no segment %q and category auto-creation is disabled",
		strings.Join(e.Path, "/"), e.Segment)
}

// IsCategoryNotFound reports whether err stems from failed category resolution.
func IsCategoryNotFound(err error) bool {
	var c *CategoryNotFoundError
	return errors.As(err, &c)
}
