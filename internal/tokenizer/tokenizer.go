// Package tokenizer selects and loads the tokenizer for a language model.
// Two backend families hide behind one interface: fixed-vocabulary
// SentencePiece models (a tokenizer.model file) and configurable byte-level
// BPE tokenizers described by tokenizer.json plus tokenizer_config.json.
package tokenizer

// Kind identifies which backend produced a Tokenizer.
type Kind string

const (
	KindSentencePiece Kind = "sentencepiece"
	KindHF            Kind = "hf"
)

// SpecialToken is one control token: its literal text and vocabulary id.
// An ID of -1 means the tokenizer defines no such token.
type SpecialToken struct {
	Text string
	ID   int32
}

// SpecialTokens groups the begin/end/unknown control tokens of a backend.
type SpecialTokens struct {
	BOS SpecialToken
	EOS SpecialToken
	UNK SpecialToken
}

// Tokenizer is the uniform handle produced by Select. Both backends
// implement the whole contract; operations a backend cannot honestly
// perform fail with ErrChatTemplateUnsupported rather than fabricating a
// result.
type Tokenizer interface {
	Encode(text string) ([]int32, error)
	Decode(ids []int32) (string, error)

	// Tokenize reports the per-token text of the encoded input.
	Tokenize(text string) ([]string, error)

	TokenToID(token string) (int32, bool)
	IDToToken(id int32) (string, bool)

	// TokensToIDs converts tokens element-wise. Entries that cannot be
	// converted are nil; output order and length always match the input.
	TokensToIDs(tokens []string) []*int32
	// IDsToTokens is the inverse mapping; nil input entries stay nil.
	IDsToTokens(ids []*int32) []*string

	// ApplyChatTemplate renders messages through the tokenizer's chat
	// template and encodes the result. Check SupportsChatTemplate before
	// calling on untrusted handles.
	ApplyChatTemplate(messages []Message, opts TemplateOptions) ([]int32, error)
	SupportsChatTemplate() bool

	SpecialTokens() SpecialTokens
	Kind() Kind
}
