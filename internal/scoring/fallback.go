// Package scoring computes the final score and narrative evaluation for a
// completed interview. It has an AI path and a deterministic heuristic
// fallback that is always available.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
)

// Per-answer score caps by difficulty. Harder questions are worth more.
const (
	easyMaxPoints   = 10
	mediumMaxPoints = 14
	hardMaxPoints   = 18
)

// Heuristic weights. Bucket boundaries and relative ordering matter here;
// the exact point values are tuned defaults, not a certified standard.
const (
	keywordBonusCap    = 4
	timeUsageBonus     = 2
	timeUsagePenalty   = 2
	thoughtfulUseRatio = 0.5
	rushedUseRatio     = 0.2
)

func maxPointsFor(d questions.Difficulty) int {
	switch d {
	case questions.Easy:
		return easyMaxPoints
	case questions.Medium:
		return mediumMaxPoints
	case questions.Hard:
		return hardMaxPoints
	default:
		return mediumMaxPoints
	}
}

// lengthBaseScore buckets the answer length into partial credit.
func lengthBaseScore(answer string) int {
	n := len(strings.TrimSpace(answer))
	switch {
	case n >= 200:
		return 8
	case n >= 100:
		return 6
	case n >= 50:
		return 4
	case n >= 10:
		return 2
	default:
		return 0
	}
}

// scoreAnswer computes the heuristic points for one answer: a length-based
// base, a keyword-relevance bonus for the question's category, and a
// time-usage adjustment that rewards using at least half the allotted time
// and penalizes answers fired off in under a fifth of it.
func scoreAnswer(answer registry.Answer, category string, timeLimit int) int {
	score := lengthBaseScore(answer.Answer)

	matches := countKeywordMatches(answer.Answer, keywordsFor(category))
	if matches > keywordBonusCap {
		matches = keywordBonusCap
	}
	score += matches

	if strings.TrimSpace(answer.Answer) != "" && timeLimit > 0 {
		usage := float64(answer.TimeSpent) / float64(timeLimit)
		if usage >= thoughtfulUseRatio {
			score += timeUsageBonus
		} else if usage < rushedUseRatio {
			score -= timeUsagePenalty
		}
	}

	if score < 0 {
		score = 0
	}
	if max := maxPointsFor(answer.Difficulty); score > max {
		score = max
	}
	return score
}

// FallbackEvaluate deterministically scores an interview from its answers
// and question set. The score is normalized to [0, 100]; an empty answer
// set scores exactly 0. The fallback produces no strengths/weaknesses/
// recommendations breakdown, only the score and summary.
func FallbackEvaluate(answers []registry.Answer, qs []questions.Question) (int, string) {
	if len(answers) == 0 {
		return 0, abandonedSummary()
	}

	categories := make(map[string]string, len(qs))
	limits := make(map[string]int, len(qs))
	for _, q := range qs {
		categories[q.ID] = q.Category
		limits[q.ID] = q.TimeLimit
	}

	total := 0
	maxTotal := 0
	answered := 0
	totalLength := 0
	totalKeywords := 0
	totalTime := 0
	for _, a := range answers {
		limit := limits[a.QuestionID]
		if limit == 0 {
			limit = questions.TimeLimitFor(a.Difficulty)
		}
		total += scoreAnswer(a, categories[a.QuestionID], limit)
		maxTotal += maxPointsFor(a.Difficulty)

		if strings.TrimSpace(a.Answer) != "" {
			answered++
			totalLength += len(a.Answer)
			totalKeywords += countKeywordMatches(a.Answer, keywordsFor(categories[a.QuestionID]))
			totalTime += a.TimeSpent
		}
	}

	score := 0
	if maxTotal > 0 {
		score = int(math.Round(100 * float64(total) / float64(maxTotal)))
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if answered == 0 {
		return 0, abandonedSummary()
	}

	return score, buildSummary(score, answered, len(answers), totalLength, totalKeywords, totalTime)
}

func abandonedSummary() string {
	return "The candidate did not provide any answers. The interview was abandoned or submitted empty, so no technical assessment is possible. Recommendation: invite the candidate to retake the interview under better conditions."
}

// buildSummary templates a narrative from the score band plus derived
// observations about answer length, keyword usage, and pacing.
func buildSummary(score, answered, total, totalLength, totalKeywords, totalTime int) string {
	var sb strings.Builder

	switch {
	case score >= 80:
		sb.WriteString("Excellent performance. ")
	case score >= 60:
		sb.WriteString("Good performance. ")
	case score >= 40:
		sb.WriteString("Average performance. ")
	default:
		sb.WriteString("Below average performance. ")
	}

	sb.WriteString(fmt.Sprintf("The candidate answered %d of %d questions. ", answered, total))

	avgLength := totalLength / answered
	switch {
	case avgLength >= 150:
		sb.WriteString("Answers were detailed and well developed. ")
	case avgLength >= 50:
		sb.WriteString("Answers had moderate depth. ")
	default:
		sb.WriteString("Answers were brief. ")
	}

	if totalKeywords >= 6 {
		sb.WriteString("Responses showed strong use of relevant technical vocabulary. ")
	} else if totalKeywords >= 2 {
		sb.WriteString("Responses touched on some relevant technical concepts. ")
	} else {
		sb.WriteString("Responses rarely referenced relevant technical concepts. ")
	}

	avgTime := totalTime / answered
	sb.WriteString(fmt.Sprintf("Average time per answered question: %ds. ", avgTime))

	switch {
	case score >= 80:
		sb.WriteString("Recommendation: strong hire signal; proceed to the next round.")
	case score >= 60:
		sb.WriteString("Recommendation: promising; a follow-up technical conversation is warranted.")
	case score >= 40:
		sb.WriteString("Recommendation: borderline; consider an additional screening exercise.")
	default:
		sb.WriteString("Recommendation: not ready at this level; suggest further preparation.")
	}

	return sb.String()
}
