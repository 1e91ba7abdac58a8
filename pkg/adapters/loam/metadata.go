package loam

// ScriptMetadata is the frontmatter of a script document. It uses
// "mapstructure" tags to match standard frontmatter/YAML keys.
type ScriptMetadata struct {
	// ID overrides the filename-derived script ID.
	ID string `json:"id" mapstructure:"id"`

	// Title is a display name for script listings; it does not name a node.
	Title string `json:"title" mapstructure:"title"`

	// Description is shown by tooling that lists scripts.
	Description string `json:"description,omitempty" mapstructure:"description"`

	// Entry names the node a session starts from when the host does not pick
	// one. Empty means the conventional "Start".
	Entry string `json:"entry,omitempty" mapstructure:"entry"`

	// Nodes carries the node list inline for JSON/YAML documents. Markdown
	// documents leave it empty and put script text in the document body.
	Nodes []NodeSource `json:"nodes,omitempty" mapstructure:"nodes"`
}

// NodeSource is one authored node of an inline script document.
type NodeSource struct {
	Title string `json:"title" mapstructure:"title"`
	Tags  string `json:"tags,omitempty" mapstructure:"tags"`
	Body  string `json:"body" mapstructure:"body"`
}
