package feature

// Generations is the number of MicroProfile generations the compatibility table knows.
const Generations = 4

// CompatibilityRow lists, for one MicroProfile component, the component version
// shipped with each generation. Thresholds[g-1] belongs to generation g.
type CompatibilityRow struct {
	Name       string
	Thresholds [Generations]string
}

// CompatibilityTable maps MicroProfile component short names to the version each
// generation ships. Add a column to every row when a new generation is released.
var CompatibilityTable = []CompatibilityRow{
	{Name: "mpconfig", Thresholds: [Generations]string{"1.3", "1.3", "1.4", "2.0"}},
	{Name: "mpfaulttolerance", Thresholds: [Generations]string{"1.1", "2.0", "2.1", "3.0"}},
	{Name: "mphealth", Thresholds: [Generations]string{"1.0", "1.0", "2.2", "3.0"}},
	{Name: "mpjwt", Thresholds: [Generations]string{"1.1", "1.1", "1.1", "1.2"}},
	{Name: "mpmetrics", Thresholds: [Generations]string{"1.1", "1.1", "2.3", "3.0"}},
	{Name: "mpopenapi", Thresholds: [Generations]string{"1.0", "1.1", "1.1", "2.0"}},
	{Name: "mpopentracing", Thresholds: [Generations]string{"1.1", "1.3", "1.3", "2.0"}},
	{Name: "mprestclient", Thresholds: [Generations]string{"1.1", "1.2", "1.4", "2.0"}},
}

var compatibilityIndex = func() map[string]CompatibilityRow {
	index := make(map[string]CompatibilityRow, len(CompatibilityTable))
	for _, row := range CompatibilityTable {
		index[row.Name] = row
	}
	return index
}()

// Classify returns the highest MicroProfile generation compatible with a component
// version, or 0 when name is not a MicroProfile component.
//
// Generations are scanned newest first. A threshold below the version means the
// version is newer than that generation, so the next one is returned, capped at the
// newest generation: unreleased versions fail open to the newest generation. An exact
// match returns that generation. A version below every threshold returns 1.
func Classify(name, version string) int {
	row, ok := compatibilityIndex[name]
	if !ok {
		return 0
	}
	for g := Generations; g >= 1; g-- {
		threshold := row.Thresholds[g-1]
		if threshold < version {
			return min(g+1, Generations)
		}
		if threshold == version {
			return g
		}
	}
	return 1
}

// MPGeneration classifies a feature token such as "mpHealth-2.2".
// Unparseable tokens and non-MicroProfile features return 0.
func MPGeneration(token string) int {
	f, err := Parse(token)
	if err != nil {
		return 0
	}
	return Classify(f.Name, f.Version)
}
