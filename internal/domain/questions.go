package domain

// DefaultBankID names the built-in question bank.
const DefaultBankID = "default"

// DefaultQuestions returns the built-in bank. A fresh slice is returned on
// every call so callers may not mutate the shared copy.
func DefaultQuestions() []Question {
	return []Question{
		{Text: "Coffee was discovered by accident.", Correct: true},
		{Text: "The human brain stops developing at age 18.", Correct: false},
		{Text: "Drinking water can improve concentration.", Correct: true},
		{Text: "Multitasking increases productivity.", Correct: false},
		{Text: "Bananas are berries.", Correct: true},
		{Text: "Goldfish have a memory of only three seconds.", Correct: false},
		{Text: "The Great Wall of China is visible from space.", Correct: false},
		{Text: "Octopuses have three hearts.", Correct: true},
		{Text: "Sharks existed before trees.", Correct: true},
		{Text: "Adults have more bones than babies.", Correct: false},
		{Text: "An ostrich's eye is bigger than its brain.", Correct: true},
		{Text: "A day on Venus is longer than a year on Venus.", Correct: true},
	}
}
