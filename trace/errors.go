package trace

import "fmt"

func errInvalidLength(what string, want, got int) error {
	return fmt.Errorf("invalid %s length: want %d bytes, got %d", what, want, got)
}
