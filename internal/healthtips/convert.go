package healthtips

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Categories assigned to tips.
const (
	CategoryFitness    = "fitness"
	CategoryNutrition  = "nutrition"
	CategoryMental     = "mental"
	CategoryPrevention = "prevention"
	CategoryWellness   = "wellness"
)

const (
	topicURLPrefix   = "https://odphp.health.gov/myhealthfinder/topics/"
	descriptionRunes = 200
)

var categoryImages = map[string]string{
	CategoryPrevention: "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800",
	CategoryFitness:    "https://images.unsplash.com/photo-1517836357463-d25dfeac3438?w=800",
	CategoryNutrition:  "https://images.unsplash.com/photo-1512621776951-a57141f2eefd?w=800",
	CategoryMental:     "https://images.unsplash.com/photo-1506126613408-eca07ce68773?w=800",
	CategoryWellness:   "https://images.unsplash.com/photo-1505751172876-fa1923c5c528?w=800",
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Tip is one health article.
type Tip struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	ImageAlt    string    `json:"imageAlt,omitempty"`
	Date        time.Time `json:"date"`
}

// Featured is the highlighted block at the top of the tips page.
type Featured struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageAlt    string `json:"imageAlt"`
	Category    string `json:"category"`
}

// Video is a static wellness video.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	Duration string `json:"duration"`
}

// Response is the aggregated health tips payload.
type Response struct {
	Featured Featured `json:"featured"`
	Tips     []Tip    `json:"tips"`
	Videos   []Video  `json:"videos"`
}

// CategoryImage returns the default image for a category.
func CategoryImage(category string) string {
	if img, ok := categoryImages[category]; ok {
		return img
	}
	return categoryImages[CategoryWellness]
}

// Categorize maps a topic title and its Categories field to a tip category.
func Categorize(title, categories string) string {
	t := strings.ToLower(title)
	c := strings.ToLower(categories)
	switch {
	case containsAny(t, "heart", "blood", "exercise", "physical") || strings.Contains(c, "physical"):
		return CategoryFitness
	case containsAny(t, "nutrition", "eat", "food", "diet") || strings.Contains(c, "nutrition"):
		return CategoryNutrition
	case containsAny(t, "mental", "stress", "depression") || strings.Contains(c, "mental"):
		return CategoryMental
	case containsAny(t, "screening", "test", "prevent", "vaccine") || containsAny(c, "screening", "checkup"):
		return CategoryPrevention
	default:
		return CategoryWellness
	}
}

// ConvertDetail builds a tip from a topicsearch resource.
func ConvertDetail(topic gjson.Result, now time.Time) Tip {
	return convert(topic, true, now)
}

// ConvertBasic builds a tip from an itemlist entry when no detail is available.
func ConvertBasic(item gjson.Result, now time.Time) Tip {
	return convert(item, false, now)
}

func convert(topic gjson.Result, detailed bool, now time.Time) Tip {
	id := topic.Get("Id").String()
	title := topic.Get("Title").String()
	category := Categorize(title, topic.Get("Categories").String())

	tip := Tip{
		ID:       "myhealthfinder-" + id,
		Category: category,
		Title:    title,
		Type:     "article",
		URL:      topicURLPrefix + id,
		ImageAlt: title,
		Date:     now.UTC(),
	}

	content := topic.Get("Sections.section.0.Content").String()
	if detailed && content != "" {
		tip.Description = summarize(content)
	} else {
		tip.Description = "Learn about " + strings.ToLower(title) + " and discover important health information to help you stay healthy."
	}

	if img := topic.Get("ImageUrl").String(); detailed && img != "" {
		tip.ImageURL = img
		if alt := topic.Get("ImageAlt").String(); alt != "" {
			tip.ImageAlt = alt
		}
	} else {
		// Default images ignore the Categories field.
		tip.ImageURL = CategoryImage(Categorize(title, ""))
	}

	if u := topic.Get("AccessibleVersion").String(); detailed && u != "" {
		tip.URL = u
	}

	if ts, err := strconv.ParseInt(topic.Get("LastUpdate").String(), 10, 64); err == nil && ts > 0 {
		tip.Date = time.Unix(ts, 0).UTC()
	}

	return tip
}

// summarize strips markup and cuts text to descriptionRunes runes.
func summarize(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	runes := []rune(text)
	if len(runes) <= descriptionRunes {
		return text
	}
	return string(runes[:descriptionRunes]) + "..."
}

// FeaturedFrom builds the spotlight block from the first tip.
func FeaturedFrom(tip Tip) Featured {
	return Featured{
		Title:       "Today's Health Spotlight",
		Description: tip.Description,
		Image:       tip.ImageURL,
		ImageAlt:    tip.Title,
		Category:    tip.Category,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
