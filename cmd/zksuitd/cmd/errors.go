package cmd

import (
	"fmt"
	"io"

	"github.com/zksuit/zksuit/x/suitability/types"
)

// PrintError writes err and, for module errors, a recovery hint.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint, ok := types.GetRecoverySuggestion(err); ok {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
