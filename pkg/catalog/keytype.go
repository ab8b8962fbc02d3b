package catalog

// KeyType identifies the issuing provider and token family of a credential.
// Values are stable, they are persisted in credential records.
type KeyType string

const (
	Anthropic     KeyType = "anthropic"
	OpenAIProject KeyType = "openai-project"
	OpenAILegacy  KeyType = "openai"
	GoogleAI      KeyType = "google-ai"
	HuggingFace   KeyType = "huggingface"
	GitHubPAT     KeyType = "github-pat"
	Groq          KeyType = "groq"
	Replicate     KeyType = "replicate"
	XAI           KeyType = "xai"
	OpenRouter    KeyType = "openrouter"
	Perplexity    KeyType = "perplexity"
	AWSAccessKey  KeyType = "aws-access-key"
	AWSSecretKey  KeyType = "aws-secret-key"
	AzureOpenAI   KeyType = "azure-openai"
)

func (k KeyType) String() string {
	return string(k)
}

func KeyTypes() []KeyType {
	return []KeyType{
		Anthropic,
		OpenAIProject,
		OpenAILegacy,
		GoogleAI,
		HuggingFace,
		GitHubPAT,
		Groq,
		Replicate,
		XAI,
		OpenRouter,
		Perplexity,
		AWSAccessKey,
		AWSSecretKey,
		AzureOpenAI,
	}
}

func ValidKeyType(val string) bool {
	for _, kt := range KeyTypes() {
		if kt.String() == val {
			return true
		}
	}
	return false
}
