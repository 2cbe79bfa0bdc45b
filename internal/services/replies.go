package services

import (
	"fmt"
	"strings"
)

// followUpTurnLimit is the conversation length after which the generic
// follow-up stops asking further questions.
const followUpTurnLimit = 10

var (
	scaleSignals    = []string{"users", "scale", "traffic", "concurrent", "load", "million", "thousand", "10k", "100k"}
	webSignals      = []string{"web", "website", "frontend", "react", "app"}
	apiSignals      = []string{"api", "gateway", "microservice", "endpoint", "graphql"}
	featureSignals  = []string{"feature", "support", "what can", "capabilit", "can you"}
	costSignals     = []string{"cost", "budget", "price", "pricing", "expensive", "cheap", "spend"}
	databaseSignals = []string{"database", "sql", "postgres", "mysql", "mongo", "storage"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ClarifyingQuestions opens every conversation.
const ClarifyingQuestions = "To recommend the right resources I need a few more details:\n\n" +
	"1. What load do you expect (requests per second or concurrent users)?\n" +
	"2. Do you have latency or throughput targets?\n" +
	"3. Are there compliance requirements such as GDPR, HIPAA or PCI DSS?\n" +
	"4. What monthly budget should the infrastructure stay within?\n" +
	"5. Do you need high availability across zones or regions?"

// Analysis summarizes what the requirements text already tells us.
func Analysis(name, requirements string) string {
	text := strings.ToLower(requirements)
	var parts []string
	if containsAny(text, webSignals) {
		parts = append(parts, "a web front end")
	}
	if containsAny(text, apiSignals) {
		parts = append(parts, "an API layer")
	}
	if containsAny(text, databaseSignals) {
		parts = append(parts, "persistent data storage")
	}
	if containsAny(text, scaleSignals) {
		parts = append(parts, "significant scale requirements")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I've analyzed the requirements for %q.", name)
	switch len(parts) {
	case 0:
		b.WriteString(" The description is fairly general, so a few questions will help me size the infrastructure.")
	case 1:
		fmt.Fprintf(&b, " It calls for %s.", parts[0])
	default:
		fmt.Fprintf(&b, " It calls for %s and %s.", strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
	}
	b.WriteString(" Let's refine the details before I propose resources.")
	return b.String()
}

// FollowUp picks the question asked after an AI answer that asked none
// itself. turns is the conversation length at the time of the answer.
func FollowUp(userMessage string, turns int) (string, bool) {
	m := strings.ToLower(userMessage)
	switch {
	case strings.Contains(m, "web") || strings.Contains(m, "app"):
		return "Will the application need user authentication, and do you expect traffic spikes at particular times of day?", true
	case strings.Contains(m, "api") || strings.Contains(m, "microservice"):
		return "How many services will expose APIs, and should they sit behind a gateway that handles rate limiting and authentication?", true
	case strings.Contains(m, "database"):
		return "What kind of data will you store, and do you need relational queries or would a document store fit better?", true
	case strings.Contains(m, "budget"):
		return "Is that budget a hard monthly limit, or can it flex when performance requires it?", true
	case strings.Contains(m, "scale") || strings.Contains(m, "user"):
		return "What peak number of concurrent users should the infrastructure handle, and in which regions are they located?", true
	}
	switch {
	case turns < 4:
		return "Are there any compliance or data residency requirements I should account for?", true
	case turns <= followUpTurnLimit:
		return "Is there anything else about availability or disaster recovery you'd like to add? Otherwise we can move on to recommendations.", true
	default:
		return "", false
	}
}

// Fallback answers a turn locally when the backend could not. Direct cost and
// feature questions are answered first; otherwise the message and the
// project requirements are scanned for scale, web and API signals.
func Fallback(userMessage, requirements string) string {
	m := strings.ToLower(userMessage)
	all := m + " " + strings.ToLower(requirements)
	switch {
	case containsAny(m, costSignals):
		return "Costs depend mostly on compute size, database tier and data transfer. " +
			"Once we generate recommendations you'll see an estimated monthly cost for every resource, " +
			"and you can deselect anything that doesn't fit your budget before provisioning."
	case containsAny(m, featureSignals):
		return "I can recommend compute, databases, storage, networking, caching and monitoring resources, " +
			"estimate their monthly cost and provision the ones you select into your cloud subscription."
	case containsAny(all, scaleSignals):
		return "For that level of traffic I'd plan for horizontal scaling: an autoscaling compute tier behind a load balancer, " +
			"a managed database with read replicas and a cache in front of hot data."
	case containsAny(all, webSignals):
		return "For a web application I'd start with a managed app hosting plan, a CDN for static assets, " +
			"a managed database and application monitoring."
	case containsAny(all, apiSignals):
		return "For an API workload I'd suggest an API gateway in front of containerized services, " +
			"with centralized logging and a managed database behind them."
	default:
		return "Thanks, that helps. Tell me more about your expected traffic, data storage needs and availability requirements " +
			"so the recommendations fit your workload."
	}
}
