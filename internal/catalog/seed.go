package catalog

// DemoResources is the starter catalog loaded by the memory backend and `devflow seed`.
func DemoResources() []Resource {
	return []Resource{
		{Kind: KindLaboratory, Name: "Chemistry Lab", Location: "Building A, 2nd floor", Capacity: 24, IsActive: true},
		{Kind: KindLaboratory, Name: "Computer Lab 1", Location: "Building C, ground floor", Capacity: 30, IsActive: true},
		{Kind: KindLaboratory, Name: "Physics Lab", Location: "Building A, 3rd floor", Capacity: 20, IsActive: false},
		{Kind: KindRoom, Name: "Aula Magna", Location: "Main building", Capacity: 200, IsActive: true},
		{Kind: KindRoom, Name: "Seminar Room 4", Location: "Building B", Capacity: 12, IsActive: true},
	}
}
