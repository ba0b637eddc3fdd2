package tasks

// grammarSheet is one topic entry of the built-in grammar catalogue, keyed by
// Block.GrammarKey.
type grammarSheet struct {
	Topic       string
	Explanation string
	Examples    []string
	Exercises   []MCQQuestion
	Transforms  []KeywordTransformItem
}

var grammarCatalogue = map[string]grammarSheet{
	"past_simple": {
		Topic:       "Past Simple",
		Explanation: "The Past Simple describes completed actions at a definite time in the past. Regular verbs add -ed; irregular verbs have their own forms.",
		Examples: []string{
			"She walked to the station yesterday.",
			"They didn't see the storm coming.",
			"Did you finish the chapter last night?",
		},
		Exercises: []MCQQuestion{
			{Question: "Yesterday we ___ a letter from the captain.", Options: []string{"receive", "received", "receives", "receiving"}, Correct: 1, Explanation: "A finished past action takes the past form."},
			{Question: "He ___ to the harbour last week.", Options: []string{"goes", "gone", "went", "going"}, Correct: 2, Explanation: "'Go' is irregular: went."},
			{Question: "___ they find the map?", Options: []string{"Did", "Do", "Does", "Done"}, Correct: 0, Explanation: "Past questions use did + base form."},
			{Question: "I ___ him at the market two days ago.", Options: []string{"see", "saw", "seen", "seeing"}, Correct: 1, Explanation: "'See' is irregular: saw."},
		},
		Transforms: []KeywordTransformItem{
			{Original: "The last time I saw him was in May.", Keyword: "SINCE", Target: "I ___ May.", Answer: "haven't seen him since"},
			{Original: "They arrived after the rain started.", Keyword: "WHEN", Target: "The rain had started ___ .", Answer: "when they arrived"},
		},
	},
	"present_perfect": {
		Topic:       "Present Perfect",
		Explanation: "The Present Perfect connects past actions to the present: experience, recent events, unfinished time periods. Form: have/has + past participle.",
		Examples: []string{
			"I have never seen such a storm.",
			"She has lived here for ten years.",
			"Have you read this chapter yet?",
		},
		Exercises: []MCQQuestion{
			{Question: "I ___ this book twice already.", Options: []string{"read", "have read", "am reading", "reads"}, Correct: 1, Explanation: "Experience up to now takes the present perfect."},
			{Question: "She ___ her keys — we can't get in.", Options: []string{"lost", "has lost", "loses", "losing"}, Correct: 1, Explanation: "A past action with a present result."},
			{Question: "They have known each other ___ childhood.", Options: []string{"for", "since", "from", "during"}, Correct: 1, Explanation: "'Since' marks the starting point."},
			{Question: "We ___ in this town since 2019.", Options: []string{"live", "lived", "have lived", "living"}, Correct: 2, Explanation: "An unfinished period uses the present perfect."},
		},
		Transforms: []KeywordTransformItem{
			{Original: "I started working here three years ago.", Keyword: "FOR", Target: "I ___ three years.", Answer: "have worked here for"},
			{Original: "This is my first visit to the island.", Keyword: "NEVER", Target: "I ___ the island before.", Answer: "have never visited"},
		},
	},
	"conditionals": {
		Topic:       "Conditionals",
		Explanation: "First conditional: real future situations (if + present, will). Second conditional: unreal present situations (if + past, would).",
		Examples: []string{
			"If it rains, we will stay inside.",
			"If I had a boat, I would sail to the island.",
		},
		Exercises: []MCQQuestion{
			{Question: "If you ___ hard, you will pass the test.", Options: []string{"will study", "study", "studied", "studying"}, Correct: 1, Explanation: "First conditional: if + present simple."},
			{Question: "If I ___ rich, I would buy a lighthouse.", Options: []string{"am", "was", "were", "be"}, Correct: 2, Explanation: "Second conditional prefers 'were' for all persons."},
			{Question: "She would come if you ___ her.", Options: []string{"invite", "invited", "will invite", "inviting"}, Correct: 1, Explanation: "Second conditional: if + past simple."},
			{Question: "If the wind drops, we ___ the harbour by noon.", Options: []string{"reach", "reached", "will reach", "would reach"}, Correct: 2, Explanation: "First conditional: will + base form."},
		},
		Transforms: []KeywordTransformItem{
			{Original: "I can't sail because I don't have a boat.", Keyword: "IF", Target: "___ a boat, I would sail.", Answer: "If I had"},
			{Original: "Hurry up or we will miss the tide.", Keyword: "UNLESS", Target: "We will miss the tide ___ .", Answer: "unless we hurry up"},
		},
	},
	"passive_voice": {
		Topic:       "Passive Voice",
		Explanation: "The passive moves the focus to the action's receiver: be + past participle. Used when the doer is unknown or unimportant.",
		Examples: []string{
			"The letter was written in haste.",
			"The bridge is being repaired this month.",
		},
		Exercises: []MCQQuestion{
			{Question: "The old map ___ in the attic last spring.", Options: []string{"found", "was found", "has found", "finding"}, Correct: 1, Explanation: "Past passive: was/were + participle."},
			{Question: "English ___ all over the world.", Options: []string{"speaks", "is spoken", "spoke", "speaking"}, Correct: 1, Explanation: "Present passive for general facts."},
			{Question: "The ship ___ next year.", Options: []string{"will repair", "will be repaired", "repairs", "is repairing"}, Correct: 1, Explanation: "Future passive: will be + participle."},
			{Question: "Dinner ___ when we arrived.", Options: []string{"was being served", "served", "is served", "serves"}, Correct: 0, Explanation: "Past continuous passive."},
		},
		Transforms: []KeywordTransformItem{
			{Original: "Somebody stole the captain's compass.", Keyword: "WAS", Target: "The captain's compass ___ .", Answer: "was stolen"},
			{Original: "They will announce the results tomorrow.", Keyword: "BE", Target: "The results will ___ tomorrow.", Answer: "be announced"},
		},
	},
	"reported_speech": {
		Topic:       "Reported Speech",
		Explanation: "Reported speech moves direct statements one tense back and adjusts pronouns and time expressions.",
		Examples: []string{
			"\"I am tired,\" she said. → She said she was tired.",
			"\"We will leave tomorrow.\" → They said they would leave the next day.",
		},
		Exercises: []MCQQuestion{
			{Question: "\"I live near the port,\" he said. He said he ___ near the port.", Options: []string{"lives", "lived", "living", "live"}, Correct: 1, Explanation: "Present simple shifts to past simple."},
			{Question: "She said she ___ the letter the day before.", Options: []string{"sent", "had sent", "has sent", "sends"}, Correct: 1, Explanation: "Past simple shifts to past perfect."},
			{Question: "He asked me where ___ .", Options: []string{"was I going", "I was going", "am I going", "I am going"}, Correct: 1, Explanation: "Reported questions keep statement order."},
			{Question: "They told us they ___ come back soon.", Options: []string{"will", "would", "can", "shall"}, Correct: 1, Explanation: "'Will' becomes 'would'."},
		},
		Transforms: []KeywordTransformItem{
			{Original: "\"I will help you,\" said the fisherman.", Keyword: "WOULD", Target: "The fisherman said he ___ me.", Answer: "would help"},
			{Original: "\"Where is the inn?\" she asked.", Keyword: "WHERE", Target: "She asked ___ .", Answer: "where the inn was"},
		},
	},
}

// defaultGrammarKey backs blocks whose grammar focus is absent or unknown.
const defaultGrammarKey = "past_simple"

func lookupGrammarSheet(key string) grammarSheet {
	if sheet, ok := grammarCatalogue[key]; ok {
		return sheet
	}
	return grammarCatalogue[defaultGrammarKey]
}
