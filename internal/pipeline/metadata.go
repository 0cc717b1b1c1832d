package pipeline

import (
	"fmt"
	"math/rand"
	"strings"

	"quotereel/manager-go/internal/upload"
)

// viralTags is the hashtag vocabulary sampled into titles, descriptions and
// video tags.
var viralTags = []string{
	"motivation", "inspiration", "success", "mindset", "hustle", "grind",
	"lifequotes", "wisdom", "selfgrowth", "entrepreneur", "positivity",
	"focus", "leadership", "vision", "goals", "selfmade", "dreambig",
	"wealth", "powerful", "neverquit", "believe", "attitude",
	"selfdiscipline", "winner", "happiness", "hustlemode", "quotesdaily",
	"billionairemindset", "determination", "mentality", "ambition", "growth",
	"motivationmonday", "successquotes", "hardwork", "stayfocused",
	"selfimprovement", "businessquotes", "dreamchaser", "dedication",
	"mindsetmatters", "grindmode", "nevergiveup", "unstoppable",
	"selfdevelopment", "greatness", "millionairemindset", "bossmindset",
	"successdriven", "manifestation", "entrepreneurmindset", "moneyquotes",
	"businessmotivation", "mindovermatter", "goalsetter", "riseandgrind",
	"growthmindset", "winnersmindset", "hustleharder", "betteryourself",
	"motivationalquotes", "successtips", "positivemindset", "goaldigger",
	"neverbackdown", "personaldevelopment", "dreambigworkhard",
	"inspirationalquotes", "wealthmindset", "powerofpositivity",
	"businessmindset", "believeinyourself", "selfbelief", "workethic",
	"staymotivated", "keeppushing", "pushyourself", "levelup",
	"buildyourempire", "nothingisimpossible", "workhardstayhumble",
	"positivevibes", "strongmind", "beyourownboss", "noexcuses",
	"successiskey", "keepgoing", "fearless", "becomebetter", "inspiredaily",
	"selfconfidence", "highperformance", "staydriven", "thinkandgrowrich",
	"buildyourdreams", "goaloriented", "unstoppablemindset",
	"lawofattraction", "financialfreedom", "stayhungry", "businessgrowth",
	"dailyquotes", "hardworkpaysoff", "wintheday", "winningmentality",
	"getmotivated", "gamechanger", "keepmovingforward", "moneytalks",
	"selfmastery", "createyourfuture", "neversettle", "riseandshine",
	"worksmart", "chasingdreams", "positivethinking", "neverstopdreaming",
	"keepgrinding", "dreamchasers", "workforit", "achievegreatness",
	"inspireothers",
}

const titleQuoteWords = 5

// BuildMetadata composes the video listing for one quote: a short title from
// the quote's opening words plus sampled hashtags, a description carrying the
// full quote and the whole shuffled vocabulary, and ten sampled tags.
func BuildMetadata(quoteText, categoryID, privacy string, rng *rand.Rand) upload.Metadata {
	titleTags := sampleTags(rng, 3)
	title := fmt.Sprintf(
		"%s... #shorts #%s, #%s, #%s",
		strings.Join(firstWords(quoteText, titleQuoteWords), " "),
		titleTags[0], titleTags[1], titleTags[2],
	)

	shuffled := make([]string, len(viralTags))
	copy(shuffled, viralTags)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	var description strings.Builder
	description.WriteString(quoteText)
	description.WriteString("\n\nFollow us for daily motivation!\n\n")
	for i, tag := range shuffled {
		if i > 0 {
			description.WriteString(" ")
		}
		description.WriteString("#" + tag)
	}

	return upload.Metadata{
		Title:       title,
		Description: description.String(),
		Tags:        sampleTags(rng, 10),
		CategoryID:  categoryID,
		Privacy:     privacy,
	}
}

func firstWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func sampleTags(rng *rand.Rand, n int) []string {
	if n > len(viralTags) {
		n = len(viralTags)
	}
	picked := make([]string, 0, n)
	for _, i := range rng.Perm(len(viralTags))[:n] {
		picked = append(picked, viralTags[i])
	}
	return picked
}
