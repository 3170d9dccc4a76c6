package models

// Dataset is a full copy of the dashboard collections. It is also the shape
// of the local-mode JSON document.
type Dataset struct {
	Projects []Project `json:"projects"`
	RFIs     []RFI     `json:"rfis"`
	Tasks    []Task    `json:"tasks"`
}

// Normalize replaces nil collections with empty ones so the dataset encodes
// as arrays rather than null.
func (d *Dataset) Normalize() {
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.RFIs == nil {
		d.RFIs = []RFI{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}

// DemoData returns the sample portfolio the dashboard ships with.
func DemoData() Dataset {
	return Dataset{
		Projects: []Project{
			{ID: 1, Name: "Highland Office Tower", Value: 4500000, DueDate: "2025-10-30", Status: StatusActive,
				Description: "Demolition of 15-story office building", Location: "Downtown district", Progress: 35},
			{ID: 2, Name: "Riverside Apartments", Value: 8200000, DueDate: "2026-08-15", Status: StatusBidding,
				Description: "Complete demolition of apartment complex", Location: "Riverside area", Progress: 10},
			{ID: 3, Name: "Central Park Renovation", Value: 1800000, DueDate: "2025-05-20", Status: StatusActive,
				Description: "Partial demolition and renovation", Location: "Central Park", Progress: 65},
			{ID: 4, Name: "Oakridge Elementary School", Value: 3200000, DueDate: "2025-01-15", Status: StatusCompleted,
				Description: "School building demolition", Location: "Oakridge district", Progress: 100},
		},
		RFIs: []RFI{
			{ID: 1, Title: "HVAC Duct Conflict", ProjectID: 1, DueDate: "2025-03-25", Priority: PriorityUrgent, Status: RFIStatusPending,
				Description: "Need clarification on HVAC duct routing through structural beams."},
			{ID: 2, Title: "Structural Support Detail", ProjectID: 3, DueDate: "2025-03-28", Priority: PriorityHigh, Status: RFIStatusPending,
				Description: "Request detailed information on temporary structural supports during demolition."},
			{ID: 3, Title: "Exterior Finish Specification", ProjectID: 3, DueDate: "2025-04-05", Priority: PriorityMedium, Status: RFIStatusPending,
				Description: "Need clarification on exterior finish removal process."},
		},
		Tasks: []Task{
			{ID: 1, Title: "Review structural drawings", ProjectID: 1, DueDate: "2025-03-22", Priority: PriorityHigh,
				Description: "Complete structural drawing review for demo sequence planning."},
			{ID: 2, Title: "Prepare bid package for subcontractors", ProjectID: 2, DueDate: "2025-03-25", Priority: PriorityMedium,
				Description: "Finalize and distribute bid package to qualified subcontractors."},
			{ID: 3, Title: "Schedule site inspection", ProjectID: 3, DueDate: "2025-03-21", Priority: PriorityMedium,
				Description: "Coordinate pre-demolition site inspection with city officials."},
		},
	}
}
