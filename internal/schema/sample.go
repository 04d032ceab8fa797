package schema

// SampleRows returns the seed desserts used by the in-memory store.
func SampleRows() []Row {
	return []Row{
		{ID: "1", Name: "Cupcake", Calories: 305, Fat: 3.7, Carbs: 67, Protein: 4.3},
		{ID: "2", Name: "Donut", Calories: 452, Fat: 25.0, Carbs: 51, Protein: 4.9},
		{ID: "3", Name: "Eclair", Calories: 262, Fat: 16.0, Carbs: 24, Protein: 6.0},
		{ID: "4", Name: "Frozen yoghurt", Calories: 159, Fat: 6.0, Carbs: 24, Protein: 4.0},
		{ID: "5", Name: "Gingerbread", Calories: 356, Fat: 16.0, Carbs: 49, Protein: 3.9},
		{ID: "6", Name: "Cheesecake", Calories: 400, Fat: 20.0, Carbs: 55, Protein: 6.5},
		{ID: "7", Name: "Brownie", Calories: 320, Fat: 18.0, Carbs: 40, Protein: 5.1},
		{ID: "8", Name: "Apple Pie", Calories: 300, Fat: 12.0, Carbs: 42, Protein: 2.8},
		{ID: "9", Name: "Ice Cream", Calories: 275, Fat: 14.0, Carbs: 30, Protein: 3.6},
		{ID: "10", Name: "Pudding", Calories: 250, Fat: 10.0, Carbs: 28, Protein: 3.2},
		{ID: "11", Name: "Muffin", Calories: 380, Fat: 15.0, Carbs: 48, Protein: 4.7},
		{ID: "12", Name: "Tart", Calories: 290, Fat: 13.0, Carbs: 36, Protein: 3.4},
		{ID: "13", Name: "Macaron", Calories: 220, Fat: 9.0, Carbs: 25, Protein: 2.0},
		{ID: "14", Name: "Croissant", Calories: 450, Fat: 21.0, Carbs: 50, Protein: 5.0},
		{ID: "15", Name: "Strudel", Calories: 330, Fat: 17.0, Carbs: 44, Protein: 4.1},
	}
}
