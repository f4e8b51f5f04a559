// Package pipeline processes the platform's stream of new questions.
//
// Loop pulls question ids, fetches each question and routes it: ineligible
// questions are skipped, polls go to Voter and everything else goes to
// Dispatcher, which asks the completion backend for an answer and posts it.
// Processing is sequential and stops early only when a quota is exhausted.
package pipeline
