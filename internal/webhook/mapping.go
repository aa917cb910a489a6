package webhook

import "sort"

// InstanceMapping maps impacted entity names to EC2 instance IDs.
type InstanceMapping struct {
	instances map[string]string
}

// DefaultInstances is the entity mapping the deployed function uses.
var DefaultInstances = NewInstanceMapping(map[string]string{
	"mt-test-win2016": "i-0cca2e61e3dac33fb",
	"mt-test-win01":   "i-0971f52241345333b",
})

func NewInstanceMapping(m map[string]string) InstanceMapping {
	instances := make(map[string]string, len(m))
	for entity, id := range m {
		instances[entity] = id
	}
	return InstanceMapping{instances: instances}
}

func (m InstanceMapping) Lookup(entity string) (string, bool) {
	id, ok := m.instances[entity]
	return id, ok
}

// Resolve returns the instance of the first entity that has a mapping.
// Order matters: later matches are ignored.
func (m InstanceMapping) Resolve(entities []string) (string, bool) {
	for _, entity := range entities {
		if id, ok := m.Lookup(entity); ok {
			return id, true
		}
	}
	return "", false
}

// InstanceIDs returns the distinct instance IDs, sorted.
func (m InstanceMapping) InstanceIDs() []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, id := range m.instances {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
