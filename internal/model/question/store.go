package question

// Store exposes phase content retrieval for HTTP handlers.
type Store interface {
	FindByPhase(phase int) (PhaseContent, bool)
}

// MemoryStore implements Store over a fixed phase map.
type MemoryStore struct {
	phases map[int]PhaseContent
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied content.
func NewMemoryStore(phases map[int]PhaseContent) *MemoryStore {
	copied := make(map[int]PhaseContent, len(phases))
	for phase, content := range phases {
		copied[phase] = content
	}
	return &MemoryStore{phases: copied}
}

// FindByPhase looks up the content for a phase.
func (s *MemoryStore) FindByPhase(phase int) (PhaseContent, bool) {
	content, ok := s.phases[phase]
	return content, ok
}
