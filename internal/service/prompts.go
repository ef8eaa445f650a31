package service

import (
	"fmt"
	"strings"

	"pdf-extract-api/internal/domain"
)

// Prompt templates sent to the inference backend. Each template is
// deterministic: the same schema and page range always produce the same
// prompt text.

const suggestFieldsPrompt = `You are a document analysis tool. The attached PDF is the first page of a document.

Identify the named data fields a person would want to extract from every page or section of this kind of document (for example: invoice number, account holder, statement date, total amount).

Return ONLY a JSON array of objects, each with exactly two keys:
- "fieldName": a short unique name for the field
- "description": one sentence describing what the field contains

Do not include any text before or after the JSON array.`

const detectHeadersPrompt = `You are a document analysis tool. The attached PDF is the first page of a document that contains a transaction-style table (for example, a bank statement).

Identify the table's column headers, in left-to-right order.

Return ONLY a JSON array of header strings, for example:
["Date","Description","Amount","Balance"]

Do not include any text before or after the JSON array.`

// fieldGroupPrompt builds the extraction instruction for one page group.
func fieldGroupPrompt(fields []domain.FieldSpec, group domain.PageGroup) string {
	var b strings.Builder
	b.WriteString("You are a document data extraction tool. The attached PDF contains pages ")
	fmt.Fprintf(&b, "%d through %d of a %d-page document. ", group.StartPage, group.EndPage, group.TotalPages)
	b.WriteString("The first page of the attachment is page ")
	fmt.Fprintf(&b, "%d of the original document.\n\n", group.StartPage)
	b.WriteString("Extract the following fields from EVERY page of the attachment:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %q: %s\n", f.FieldName, f.Description)
	}
	b.WriteString("\nReturn ONLY a JSON array with one object per page, in page order. Each object must have exactly two keys:\n")
	b.WriteString(`- "pageNumber": the page's number in the ORIGINAL document (an integer)` + "\n")
	b.WriteString(`- "fields": an object mapping each requested field name to its extracted value, or null if the field is not present on that page` + "\n")
	b.WriteString("\nDo not include any text before or after the JSON array.")
	return b.String()
}

// tablePagePrompt builds the extraction instruction for one page of a table
// document, constrained to the shared header schema. The attachment is the
// page's whole group slice; the prompt targets a single page inside it.
func tablePagePrompt(headers []string, pageNumber int, group domain.PageGroup) string {
	var b strings.Builder
	b.WriteString("You are a document data extraction tool. The attached PDF contains pages ")
	fmt.Fprintf(&b, "%d through %d of a %d-page document containing a transaction-style table. ", group.StartPage, group.EndPage, group.TotalPages)
	b.WriteString("The first page of the attachment is page ")
	fmt.Fprintf(&b, "%d of the original document.\n\n", group.StartPage)
	fmt.Fprintf(&b, "Look ONLY at page %d of the original document (page %d of the attachment).\n\n", pageNumber, pageNumber-group.StartPage+1)
	b.WriteString("The table's columns are, in order:\n")
	for _, h := range headers {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	b.WriteString("\nExtract every table row that appears on that page. ")
	b.WriteString("Return ONLY a JSON array of rows, where each row is an array of cell strings matching the column order above. ")
	b.WriteString("If the page contains no table rows, return an empty array [].\n\n")
	b.WriteString("Do not include any text before or after the JSON array.")
	return b.String()
}
