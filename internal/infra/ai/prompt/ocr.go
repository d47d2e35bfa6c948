package prompt

import (
	"fmt"
	"strings"
)

// EnhanceOCR asks the model to repair raw OCR output.
func EnhanceOCR(extractedText, imageContext string) string {
	var b strings.Builder
	b.WriteString(`You are an expert at cleaning up text produced by OCR (optical character recognition).
The text below was extracted from a scanned document or image and may contain recognition errors.

Your task:
1. Correct OCR errors such as misread characters (0/O, 1/l/I, rn/m).
2. Fix spacing and line breaks that were broken by the scan.
3. Complete words that were truncated, only when the intended word is clear.
4. Organize the content into a readable structure (paragraphs, lists, tables as plain text).
5. Preserve every piece of information. Do not summarize, translate or invent content.

`)
	if ctx := strings.TrimSpace(imageContext); ctx != "" {
		fmt.Fprintf(&b, "Context about the image: %s\n\n", ctx)
	}
	fmt.Fprintf(&b, "OCR text:\n\"\"\"\n%s\n\"\"\"\n\nReturn only the corrected text.", extractedText)
	return b.String()
}

// ImageOCR is the fixed question sent with an image to the vision model.
func ImageOCR() string {
	return `Extract all visible text from this image exactly as it appears.
Include text from tables, forms, labels and handwriting, keeping rows and columns aligned.
Pay special attention to numbers, dates, names, email addresses, phone numbers and other contact details.
Return only the extracted text.`
}
