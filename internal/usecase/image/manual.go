package image

import (
	"fmt"
	"strings"
)

// ManualInstructions tells an operator how to produce the image by hand.
func ManualInstructions(prompt, outputPath string) string {
	var b strings.Builder
	b.WriteString("No image backend was available. To create the image manually:\n")
	b.WriteString("  1. Paste the prompt below into an image generator of your choice.\n")
	fmt.Fprintf(&b, "  2. Save the result as %s.\n", outputPath)
	fmt.Fprintf(&b, "  3. Run: curator strip-metadata %s\n", outputPath)
	b.WriteString("\nPrompt:\n")
	b.WriteString(prompt)
	b.WriteString("\n")
	return b.String()
}
