package main

import "strings"

// Question is one entry in a game format's catalog. The prompt is
// format-specific: an emoji sequence or a scrambled word. The canonical
// answer is stored lower-case and never serialized to clients.
type Question struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"-"`
	Hint   string `json:"hint"`
}

// GameFormat is an ordered catalog of questions sharing one presentation
// style. A round plays one format start to finish.
type GameFormat struct {
	Key       string
	Name      string
	Questions []Question
}

// gameFormats is the static catalog, loaded once and never mutated. The
// round sequencer picks from it uniformly at random, one format per round.
var gameFormats = []GameFormat{
	{
		Key:  "emojiMovie",
		Name: "Emoji Movie Guess",
		Questions: []Question{
			{ID: 1, Prompt: "👑🗡️⚔️", Answer: "bahubali", Hint: "Epic war drama with Prabhas"},
			{ID: 2, Prompt: "🚂🎬❤️", Answer: "ddlj", Hint: "Raj and Simran's love story"},
			{ID: 3, Prompt: "🩺🤪😂", Answer: "munna bhai mbbs", Hint: "Sanjay Dutt as a funny doctor"},
			{ID: 4, Prompt: "🏃‍♂️💨⭐", Answer: "3 idiots", Hint: "Aamir Khan engineering comedy"},
			{ID: 5, Prompt: "👨‍👦💔🎨", Answer: "taare zameen par", Hint: "Special child and caring teacher"},
			{ID: 6, Prompt: "🤼‍♀️🥇👨‍👧‍👧", Answer: "dangal", Hint: "Wrestling sisters and their father"},
			{ID: 7, Prompt: "🌟🚗✨", Answer: "zindagi na milegi dobara", Hint: "Three friends Spain adventure"},
			{ID: 8, Prompt: "🔥💥⚡", Answer: "sholay", Hint: "Gabbar Singh classic revenge"},
			{ID: 9, Prompt: "❤️🎤🎵", Answer: "aashiqui 2", Hint: "Aditya Roy Kapur music romance"},
			{ID: 10, Prompt: "🏏🇮🇳🏆", Answer: "ms dhoni", Hint: "Captain Cool's biopic"},
		},
	},
	{
		Key:  "wordScramble",
		Name: "Word Scramble",
		Questions: []Question{
			{ID: 1, Prompt: "WOLLERAFRE", Answer: "farewell", Hint: "Goodbye event"},
			{ID: 2, Prompt: "DRENSIF", Answer: "friends", Hint: "People you care about"},
			{ID: 3, Prompt: "YROMEME", Answer: "memory", Hint: "Something you remember"},
			{ID: 4, Prompt: "TEGREHOT", Answer: "together", Hint: "In unity"},
			{ID: 5, Prompt: "PHYPA", Answer: "happy", Hint: "Feeling joyful"},
			{ID: 6, Prompt: "CEILARBETON", Answer: "celebration", Hint: "Party time"},
			{ID: 7, Prompt: "MASTE", Answer: "teams", Hint: "Working groups"},
			{ID: 8, Prompt: "CCUSSESS", Answer: "success", Hint: "Achievement"},
			{ID: 9, Prompt: "RUUTEF", Answer: "future", Hint: "What's coming next"},
			{ID: 10, Prompt: "SIHW", Answer: "wish", Hint: "Hope for something"},
		},
	},
}

// normalizeAnswer lower-cases and trims a submitted answer. Both stored
// submissions and the comparison against the canonical answer go through
// this, so "Dangal " and "DANGAL" score the same.
func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
