package healthtips

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		title      string
		categories string
		want       string
	}{
		{"Keep Your Heart Healthy", "", CategoryFitness},
		{"Get Active", "Physical Activity", CategoryFitness},
		{"Eat Healthy", "", CategoryNutrition},
		{"Talk With Your Doctor", "Nutrition", CategoryNutrition},
		{"Manage Stress", "", CategoryMental},
		{"Get Your Flu Vaccine", "", CategoryPrevention},
		{"Visit the Dentist", "Doctor Visits, Checkup", CategoryPrevention},
		{"Protect Your Skin", "", CategoryWellness},
		// Title keywords win over Categories in rule order.
		{"Get Tested for Blood Pressure", "mental", CategoryFitness},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.title, tt.categories))
		})
	}
}

func TestConvertDetail(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	long := strings.Repeat("é", 250)
	topic := gjson.Parse(`{
		"Id": "30530",
		"Title": "Lower Your Risk of Falling",
		"Categories": "Checkup",
		"ImageUrl": "https://example.com/fall.jpg",
		"ImageAlt": "Older adult walking",
		"AccessibleVersion": "https://example.com/fall",
		"LastUpdate": "1700000000",
		"Sections": {"section": [{"Content": "<p>` + long + `</p>"}]}
	}`)

	tip := ConvertDetail(topic, now)

	assert.Equal(t, "myhealthfinder-30530", tip.ID)
	assert.Equal(t, CategoryPrevention, tip.Category)
	assert.Equal(t, "article", tip.Type)
	assert.Equal(t, "https://example.com/fall.jpg", tip.ImageURL)
	assert.Equal(t, "Older adult walking", tip.ImageAlt)
	assert.Equal(t, "https://example.com/fall", tip.URL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), tip.Date)
	assert.Equal(t, strings.Repeat("é", 200)+"...", tip.Description)
}

func TestConvertDetail_Defaults(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	topic := gjson.Parse(`{"Id": "42", "Title": "Quit Smoking", "Categories": "Mental Health"}`)

	tip := ConvertDetail(topic, now)

	assert.Equal(t, CategoryMental, tip.Category)
	assert.Equal(t, "Learn about quit smoking and discover important health information to help you stay healthy.", tip.Description)
	// Default image follows the title alone.
	assert.Equal(t, CategoryImage(CategoryWellness), tip.ImageURL)
	assert.Equal(t, "https://odphp.health.gov/myhealthfinder/topics/42", tip.URL)
	assert.Equal(t, now, tip.Date)
}

func TestConvertBasic_IgnoresDetailFields(t *testing.T) {
	item := gjson.Parse(`{"Id": "7", "Title": "Eat Less Salt", "ImageUrl": "https://example.com/x.jpg", "Sections": {"section": [{"Content": "ignored"}]}}`)

	tip := ConvertBasic(item, time.Now())

	assert.Equal(t, CategoryImage(CategoryNutrition), tip.ImageURL)
	assert.True(t, strings.HasPrefix(tip.Description, "Learn about eat less salt"))
}

func TestSummarize_Short(t *testing.T) {
	assert.Equal(t, "Hello world", summarize("<b>Hello</b> <i>world</i>"))
}

func TestFallback(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	resp := Fallback(now)

	assert.Equal(t, "Evidence-Based Health Guidance", resp.Featured.Title)
	assert.Len(t, resp.Tips, 6)
	assert.Len(t, resp.Videos, 4)
	for _, tip := range resp.Tips {
		assert.Equal(t, "article", tip.Type)
		assert.False(t, tip.Date.After(now))
		assert.True(t, tip.Date.After(now.AddDate(0, 0, -7)))
	}
}

func TestFeaturedFrom(t *testing.T) {
	f := FeaturedFrom(Tip{Title: "T", Description: "D", ImageURL: "I", Category: CategoryMental})
	assert.Equal(t, Featured{Title: "Today's Health Spotlight", Description: "D", Image: "I", ImageAlt: "T", Category: CategoryMental}, f)
}
