package retrieval

// seedPairs are the example entries a brand-new tenant corpus starts
// with. They are created stale and embedded on the first refresh.
var seedPairs = []QAPair{
	{
		Question: "What time is check-in?",
		Answer:   "Check-in is from 3:00 PM to 7:00 PM. Late check-in is possible if you contact us in advance.",
	},
	{
		Question: "Is parking available?",
		Answer:   "Yes, we offer free parking. Please contact us in advance for oversized vehicles.",
	},
	{
		Question: "Is Wi-Fi available?",
		Answer:   "Free Wi-Fi is available in all guest rooms. Connection details are provided at check-in.",
	},
	{
		Question: "Can you accommodate food allergies?",
		Answer:   "Yes. Please let us know about any allergies when booking and we will accommodate them whenever possible.",
	},
	{
		Question: "What room types do you offer?",
		Answer:   "We offer both Japanese-style and Western-style rooms, including single, twin and double layouts.",
	},
}
