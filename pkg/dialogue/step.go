package dialogue

// LineType constants describe what kind of dialogue unit a session currently
// presents. The session re-evaluates this on every advance.
const (
	// LineTypeText is a scrollable text line assembled from one or more fragments.
	LineTypeText = "text"
	// LineTypeOptions is a branch point waiting for the player to confirm a choice.
	LineTypeOptions = "options"
	// LineTypeCommand is only ever observable transiently while command steps
	// auto-resolve; it never survives an Advance call.
	LineTypeCommand = "command"
	// LineTypeUnknown marks an exhausted or unrecognized sequence position.
	LineTypeUnknown = "unknown"
)

// Step is one element of the node stream an interpreter cursor yields.
// Exactly three variants exist: Text, Options and Command.
type Step interface {
	step()
}

// Text is a fragment of presentable dialogue text together with the metadata
// of the script node it came from. Consecutive Text steps separated only by
// Command steps belong to the same displayed line.
type Text struct {
	// Text is the raw fragment, before any scroll clipping.
	Text string
	// Title, Tags and Body describe the script node that produced the fragment.
	Title string
	Tags  []string
	Body  string
}

// Options is a branch point. Candidates are presented in script order; Select
// tells the interpreter which branch to follow and must be called exactly once
// before the cursor is advanced past this step.
type Options struct {
	Candidates []string
	Select     func(index int) error
}

// Command is a raw script directive (the text between command delimiters),
// delivered out-of-band from displayed text.
type Command struct {
	Text string
}

func (Text) step()    {}
func (Options) step() {}
func (Command) step() {}

// NodeInfo is the branch metadata cached on a session while its node's text is
// displayed. It is replaced when the next Text step arrives.
type NodeInfo struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Body  string   `json:"body"`
}
