// Package qtex is the Composition Root for the qtex converter.
//
// It connects the question model (pkg/core) with the format adapters
// (QuestionTeX, Moodle XML, zip bundles) and the optional SQL question bank.
//
// Features:
//
//   - **QuestionTeX import**: macro and environment vocabulary with aliases,
//     balanced-brace arguments, formula dialects and embedded images.
//   - **Grading schemes**: Default, akveld and akveld-exam resolve true/false
//     markers to answer fractions.
//   - **Export**: canonical QuestionTeX with extracted images, or Moodle XML.
//   - **Question bank**: SQLite or PostgreSQL storage of converted quizzes.
//
// Usage:
//
//	qs, warnings, err := qtex.Parse(doc, nil, qtex.WithGradingScheme("akveld"))
//
//	text, images, err := qtex.Serialize(qs)
package qtex
