package iso20022

import _ "embed"

//go:embed skeleton.xml
var skeletonXML []byte

// LoadSkeleton parses the embedded pain.001.001.03 template. It is meant to
// be called once at process startup (§5: "the template XML is read once at
// startup"); the returned *Document is then shared read-only across Emit
// calls.
func LoadSkeleton() (*Document, error) {
	return ParseSkeleton(skeletonXML)
}
