package classify_test

import (
	"strings"
	"testing"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/classify"
	"github.com/nagelea/keysentry/pkg/extract"
	"github.com/nagelea/keysentry/pkg/fetch"
	"github.com/nagelea/keysentry/pkg/logg"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

const azureHex = "3f9a7b2c8d1e4f5a9b0c6d2e8f3a1b4c"

var log = logg.NewLogrusLogg(logrus.New())

func newClassifier() *classify.Classifier {
	return classify.NewClassifier(catalog.NewDefault(), log)
}

func azureCandidate(before, after, path string) *extract.Candidate {
	return &extract.Candidate{
		Value:         azureHex,
		KeyType:       catalog.AzureOpenAI,
		Confidence:    catalog.ConfidenceLow,
		Ref:           &fetch.SourceRef{RepoOwner: "acme", RepoName: "demo", Path: path},
		ContextBefore: before,
		ContextAfter:  after,
		Line:          before + azureHex + after,
	}
}

func TestClassify_AzureKeyWithoutContext(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := azureCandidate("SOME_KEY=", " more stuff follows", "settings.py")

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.MissingRequiredContext))
}

func TestClassify_AzureKeyWithSupportingContext(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := azureCandidate("azure openai endpoint key\nAZURE_OPENAI_KEY=", "\n", "config.py")

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeTrue())
	g.Expect(verdict.Confidence).To(Equal(catalog.ConfidenceLow))
	g.Expect(verdict.Severity).To(Equal(catalog.SeverityMedium))
}

func TestClassify_AzureShapedGitHashRejected(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := azureCandidate("azure pipeline commit = ", "\n", "pipeline.yml")

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.ExcludedContextPresent))
}

func TestClassify_FakeIndicatorInLiteral(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := &extract.Candidate{
		Value:      "sk-ant-api03-example" + strings.Repeat("a", 73) + "AA",
		KeyType:    catalog.Anthropic,
		Confidence: catalog.ConfidenceHigh,
		Line:       "key = ...",
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.FakeIndicator))
}

func TestClassify_FakeIndicatorNearLiteral(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := &extract.Candidate{
		Value:         "hf_" + strings.Repeat("R", 34),
		KeyType:       catalog.HuggingFace,
		Confidence:    catalog.ConfidenceHigh,
		ContextBefore: "replace this placeholder with a real token: ",
		Line:          "token = ...",
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.FakeIndicator))
}

func TestClassify_CommentedOutSecretRejected(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	value := "gsk_" + strings.Repeat("w", 52)
	candidate := &extract.Candidate{
		Value:      value,
		KeyType:    catalog.Groq,
		Confidence: catalog.ConfidenceHigh,
		Line:       "# groq_key = \"" + value + "\"",
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.CommentLine))
}

func TestClassify_HighConfidenceNeedsNoContext(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := &extract.Candidate{
		Value:      "gsk_" + strings.Repeat("w", 52),
		KeyType:    catalog.Groq,
		Confidence: catalog.ConfidenceHigh,
		Ref:        &fetch.SourceRef{Path: "notes.txt"},
		Line:       "key assignment",
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeTrue())
	g.Expect(verdict.Severity).To(Equal(catalog.SeverityLow))
}

func TestClassify_ProductionPathRaisesSeverity(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := &extract.Candidate{
		Value:      "gsk_" + strings.Repeat("w", 52),
		KeyType:    catalog.Groq,
		Confidence: catalog.ConfidenceHigh,
		Ref:        &fetch.SourceRef{Path: "deploy/prod/app.py"},
		Line:       "key assignment",
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeTrue())
	g.Expect(verdict.Severity).To(Equal(catalog.SeverityHigh))
}

func TestClassify_LowEntropyGenericValueRejected(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := &extract.Candidate{
		Value:         strings.Repeat("a1", 16),
		KeyType:       catalog.AzureOpenAI,
		Confidence:    catalog.ConfidenceLow,
		ContextBefore: "azure openai api-key: ",
		Line:          "azure openai api-key: " + strings.Repeat("a1", 16),
	}

	// Fire
	verdict := subject.Classify(candidate)

	g.Expect(verdict.Accepted).To(BeFalse())
	g.Expect(verdict.Reason).To(Equal(classify.LowEntropy))
}

func TestClassify_Deterministic(t *testing.T) {
	g := NewWithT(t)
	subject := newClassifier()
	candidate := azureCandidate("azure openai endpoint key\nAZURE_OPENAI_KEY=", "\n", "config.py")

	// Fire
	first := subject.Classify(candidate)
	second := subject.Classify(candidate)

	g.Expect(first).To(Equal(second))
}
