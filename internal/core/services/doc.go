// Package services holds the research pipeline: the planner, retriever,
// synthesizer and critic agents, the per-company ResearchAgent that
// orchestrates them, the session pool, guardrails and settings.
//
// Services only talk to infrastructure through the driven ports, so every
// collaborator can be swapped for a no-op or a test double.
package services
