package generator

// ApplyPrefix prepends the configured prompt prefix, if any.
func ApplyPrefix(options Options, prompt string) string {
	if len(options.PromptPrefix) == 0 {
		return prompt
	}
	return options.PromptPrefix + "\n" + prompt
}
