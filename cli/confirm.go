package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks question on out and reads the answer from in. Only "y" and
// "yes" count as agreement.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (yes/no): ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
