package triage

import "github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"

// DefaultRules is the built-in taxonomy, in declaration order. Lower
// priority number = higher precedence. The final Misc/Other rule is the
// mandatory catch-all.
func DefaultRules() []domain.CategoryRule {
	return []domain.CategoryRule{
		{
			Name: "Work/Dev/GitHub",
			Patterns: []string{
				`github\.com`,
				`notifications@github`,
				`@reply\.github\.com`,
				`copilot`,
			},
			Priority:      1,
			Tier:          domain.TierImportant,
			TimeSensitive: true,
		},
		{
			Name:          "Work/Dev/Code-Review",
			Patterns:      []string{`coderabb`, `sourcery`, `qodo`, `codacy`},
			Priority:      2,
			Tier:          domain.TierImportant,
			TimeSensitive: true,
		},
		{
			Name: "Work/Dev/Infrastructure",
			Patterns: []string{
				`cloudflare`, `vercel`, `netlify`, `digitalocean`,
				`railway`, `render\.com`, `newrelic`, `backblaze`,
			},
			Priority:      3,
			Tier:          domain.TierImportant,
			TimeSensitive: true,
		},
		{
			Name: "AI/Services",
			Patterns: []string{
				`openai`, `anthropic`, `claude`, `x\.ai`,
				`perplexity`, `ollama`,
			},
			Priority: 4,
			Tier:     domain.TierDelegate,
		},
		{
			Name:     "AI/Data Exports",
			Patterns: []string{`data export`, `export is ready`, `download.*data`},
			Priority: 6,
			Tier:     domain.TierDelegate,
		},
		{
			Name: "Finance/Banking",
			Patterns: []string{
				`chase`, `capital.?one`, `bankofamerica`, `wellsfargo`,
				`citi`, `usbank`, `ally`, `marcus`,
				`credit score`, `credit card`, `credit report`,
				`loan`, `apr`, `refinance`, `overdraft`,
				`collections`, `settlement`, `debt`,
			},
			Priority:      7,
			Tier:          domain.TierImportant,
			TimeSensitive: true,
		},
		{
			Name: "Finance/Payments",
			Patterns: []string{
				`paypal`, `stripe`, `cash.?app`, `square`, `braintree`,
				`plaid`, `venmo`, `zelle`, `discover`, `american.?express`,
				`statement`, `invoice`, `payment.*due`, `past due`,
				`overdue`, `declined`, `failed payment`, `autopay`,
				`renewal`, `subscription`,
			},
			Priority:      8,
			Tier:          domain.TierImportant,
			TimeSensitive: true,
		},
		{
			Name: "Tech/Security",
			Patterns: []string{
				`1password`, `security.*alert`, `login.*detected`,
				`new.*device`, `password.*reset`, `verification.*code`,
				`unusual activity`, `suspicious`, `two[- ]factor`, `2fa`,
			},
			Priority:      9,
			Tier:          domain.TierCritical,
			TimeSensitive: true,
		},
		{
			Name: "Shopping",
			Patterns: []string{
				`amazon`, `ebay`, `etsy`, `walmart`, `target`,
				`bestbuy`, `costco`, `order.*confirm`, `shipped`,
				`tracking`, `flash sale`,
			},
			Priority: 10,
			Tier:     domain.TierReference,
		},
		{
			Name: "Travel",
			Patterns: []string{
				`united\.com`, `delta\.com`, `southwest`, `jetblue`,
				`marriott`, `hilton`, `airbnb`, `booking\.com`,
				`expedia`, `itinerary`, `boarding.*pass`, `flight.*confirm`,
			},
			Priority:      11,
			Tier:          domain.TierDelegate,
			TimeSensitive: true,
		},
		{
			Name: "Entertainment",
			Patterns: []string{
				`netflix`, `spotify`, `audible`, `fandango`, `letterboxd`,
			},
			Priority: 12,
			Tier:     domain.TierReference,
		},
		{
			Name: "Education/Research",
			Patterns: []string{
				`coursera`, `udemy`, `skillshare`, `edx`,
				`scholar\.google`, `researchgate`, `arxiv`,
			},
			Priority: 13,
			Tier:     domain.TierReference,
		},
		{
			Name: "Professional/Jobs",
			Patterns: []string{
				`indeed`, `linkedin.*jobs`, `glassdoor`, `ziprecruiter`,
				`training overdue`, `compliance`,
			},
			Priority: 14,
			Tier:     domain.TierDelegate,
		},
		{
			Name:     "Services/Domain",
			Patterns: []string{`namecheap`, `godaddy`, `domain.*renew`, `dns`},
			Priority: 15,
			Tier:     domain.TierDelegate,
		},
		{
			Name: "Notification",
			Patterns: []string{
				`notification`, `alert`, `reminder`,
				`automatic reply`, `auto-reply`,
			},
			Priority: 16,
			Tier:     domain.TierDelegate,
		},
		{
			Name: "Marketing",
			Patterns: []string{
				`unsubscribe`, `newsletter`, `promo`, `special.*offer`,
				`discount`, `deal`, `last chance`, `coupon`,
				`offer ends`, `free shipping`, `clearance`,
			},
			Priority: 17,
			Tier:     domain.TierReference,
		},
		{
			Name:          "Personal",
			Patterns:      []string{`family`, `mom`, `dad`},
			Priority:      18,
			Tier:          domain.TierCritical,
			TimeSensitive: true,
		},
		{
			Name:          "Awaiting Reply",
			Patterns:      []string{`awaiting.*reply`, `pending.*response`},
			Priority:      19,
			Tier:          domain.TierCritical,
			TimeSensitive: true,
		},
		{
			Name:     "Misc/Other",
			Patterns: []string{`.*`},
			Priority: domain.CatchAllPriority,
			Tier:     domain.TierReference,
		},
	}
}

// CatchAllLabel is the label of the default catch-all rule.
const CatchAllLabel = "Misc/Other"
