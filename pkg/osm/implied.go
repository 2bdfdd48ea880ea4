package osm

// impliedRule fills a tag that the source convention implies but the mapper
// left out.
type impliedRule struct {
	whenKey   string
	whenValue string
	implyKey  string
	implyVal  string
}

var impliedRules = []impliedRule{
	// A drinking_water amenity is potable unless explicitly tagged otherwise.
	{"amenity", "drinking_water", "drinking_water", "yes"},
	{"man_made", "drinking_fountain", "drinking_water", "yes"},
	// A drinking fountain offers bottle refill unless tagged otherwise.
	{"amenity", "drinking_water", "bottle", "yes"},
}

// ApplyImpliedProperties post-processes raw records, filling tags the
// source's tagging conventions imply. Explicit tags always win; only absent
// tags are filled.
func ApplyImpliedProperties(records []Record) []Record {
	for i := range records {
		tags := records[i].Tags
		for _, rule := range impliedRules {
			if tags[rule.whenKey] != rule.whenValue {
				continue
			}
			if _, explicit := tags[rule.implyKey]; explicit {
				continue
			}
			tags[rule.implyKey] = rule.implyVal
		}
	}
	return records
}
