package summarize

import "fmt"

// SystemPrompt frames the model for every summarization request.
const SystemPrompt = "You are a helpful assistant, skillful at analysing passages of texts and summarising key findings."

const updatePrompt = `I am going to provide you with a 'summary' of the key information about the following task: %s. ` +
	`I am then going to provide you with a 'passage' of text which may or may not include additional information on that task. ` +
	`Please re-write the summary to include any additional information from the passage of text. ` +
	`It is possible that the initial summary will contain no text, in which case use the information in the passage of text to write a summary. ` +
	`If there is no information in the passage of text relevant to the task, do not update the summary. ` +
	`Summary: %s. Passage of text: %s`

// BuildPrompt creates the user message asking the model to merge passage into prior.
func BuildPrompt(prior, task, passage string) string {
	return fmt.Sprintf(updatePrompt, task, prior, passage)
}
