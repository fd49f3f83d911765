package chat

import "strings"

// Canned assistant replies for the conversational intents.
const (
	replyGreeting     = "Hello there! I'm BookPal, your assistant for managing your book collection. How can I help you today?"
	replyCapability   = "I can help you add, update, delete, and search for books in your collection. What would you like to do?"
	replyOutOfScope   = "I'm sorry, I can only assist with managing your book catalog. I don't have information about other topics like recommendation systems or general knowledge."
	replyUnrecognized = "I'm not sure how to handle that request. Please try rephrasing or ask for 'help' to see what I can do."

	helpAdd    = `To add a book, type: Add book titled "Book Name" by Author Name in Genre, published in 2020.`
	helpDelete = `To delete a book, type: Delete book titled "Book Name" or by author "Author Name".`
	helpUpdate = `To update a book, say: Change the title of "Old Title" to "New Title" or update genre/year.`
	helpSearch = `To search for books, type: Find books by "Author Name", genre, or books published after 2000.`
)

// helpReply picks the topic-specific help text based on keywords in the
// utterance, defaulting to the capability summary.
func helpReply(utterance string) string {
	lower := strings.ToLower(utterance)
	switch {
	case strings.Contains(lower, "add"):
		return helpAdd
	case strings.Contains(lower, "delete"):
		return helpDelete
	case strings.Contains(lower, "update"), strings.Contains(lower, "change"):
		return helpUpdate
	case strings.Contains(lower, "search"), strings.Contains(lower, "find"):
		return helpSearch
	default:
		return replyCapability
	}
}
