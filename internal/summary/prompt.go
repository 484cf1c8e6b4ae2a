package summary

import "fmt"

const extractionFailed = "Content extraction failed. This page might not contain easily parsed content."

// Prompt asks a bot to summarise p.
func Prompt(p Page) string {
	content := p.Content
	if content == "" {
		content = extractionFailed
	}
	title := p.Title
	if title == "" {
		title = p.URL
	}
	return fmt.Sprintf("Please summarize the following web page:\n\nTitle: %v\nURL: %v\n\nContent: %v", title, p.URL, content)
}

// Label is a short display text for the summary request.
func Label(p Page) string {
	if p.Title == "" {
		return fmt.Sprintf("Web summary: %v", p.URL)
	}
	return fmt.Sprintf("Web summary: %v", p.Title)
}
