package systems

// SystemInfo describes one phase of the sanctuary tick.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "drives", "decision")
}

// SystemRegistry holds metadata about all tick phases.
// This centralizes phase naming so logs and the perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the tick phases in pipeline order.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	// Bookkeeping
	r.Register(SystemInfo{ID: "prune", Name: "Prune", Description: "Drops stale provider handles from the spatial index", Category: "core"})

	// Drives
	r.Register(SystemInfo{ID: "alerts", Name: "Alerts", Description: "Applies alarm calls queued last tick", Category: "drives"})
	r.Register(SystemInfo{ID: "needs", Name: "Needs", Description: "Grows hunger, thirst and fatigue; decays fear", Category: "drives"})
	r.Register(SystemInfo{ID: "threats", Name: "Threats", Description: "Raises fear near predators", Category: "drives"})

	// Decision
	r.Register(SystemInfo{ID: "interrupt", Name: "Interrupt", Description: "Forces panicked birds to flee", Category: "decision"})
	r.Register(SystemInfo{ID: "validate", Name: "Validate", Description: "Revalidates bird targets against the registry", Category: "decision"})
	r.Register(SystemInfo{ID: "servicing", Name: "Servicing", Description: "Satisfies needs and depletes providers in use", Category: "decision"})
	r.Register(SystemInfo{ID: "arrival", Name: "Arrival", Description: "Starts activities at reached targets", Category: "decision"})
	r.Register(SystemInfo{ID: "arbitration", Name: "Arbitration", Description: "Scores providers and picks targets", Category: "decision"})

	// Movement
	r.Register(SystemInfo{ID: "steering", Name: "Steering", Description: "Resolves steering destinations", Category: "movement"})
	r.Register(SystemInfo{ID: "integration", Name: "Integration", Description: "Moves birds toward their destinations", Category: "movement"})

	// Observation
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Collects facts and window stats", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
