package healthtips

import "time"

// Videos returns the static wellness videos.
func Videos() []Video {
	return []Video{
		{ID: "v1", Title: "5-Minute Meditation for Beginners", VideoURL: "https://www.youtube.com/embed/inpok4MKVLM", Duration: "5:23"},
		{ID: "v2", Title: "Quick Home Workout Routine", VideoURL: "https://www.youtube.com/embed/ML4wb94dG10", Duration: "12:45"},
		{ID: "v3", Title: "Healthy Meal Prep Ideas", VideoURL: "https://www.youtube.com/embed/ghseFWwK9cI", Duration: "8:30"},
		{ID: "v4", Title: "Breathing Exercises for Stress Relief", VideoURL: "https://www.youtube.com/embed/wfDTp2GogaQ", Duration: "6:15"},
	}
}

var fallbackTips = []Tip{
	{ID: "1", Category: CategoryPrevention, Title: "Get Recommended Health Screenings",
		Description: "Regular health screenings can help find problems before they start or early when treatment works better.",
		ImageURL:    "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800"},
	{ID: "2", Category: CategoryFitness, Title: "Get Moving with Physical Activity",
		Description: "Adults need at least 150 minutes of moderate-intensity aerobic activity each week.",
		ImageURL:    "https://images.unsplash.com/photo-1505751172876-fa1923c5c528?w=800"},
	{ID: "3", Category: CategoryNutrition, Title: "Eat Healthy Foods",
		Description: "A healthy eating plan emphasizes fruits, vegetables, whole grains, and fat-free or low-fat milk.",
		ImageURL:    "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=800"},
	{ID: "4", Category: CategoryPrevention, Title: "Take Steps to Control Your Blood Pressure",
		Description: "High blood pressure usually has no warning signs or symptoms, so monitoring is important.",
		ImageURL:    "https://images.unsplash.com/photo-1476480862126-209bfaa8edc8?w=800"},
	{ID: "5", Category: CategoryMental, Title: "Manage Stress for Better Health",
		Description: "Everyone feels stressed from time to time, but chronic stress can affect your health.",
		ImageURL:    "https://images.unsplash.com/photo-1506126613408-eca07ce68773?w=800"},
	{ID: "6", Category: CategoryPrevention, Title: "Get Vaccinated to Protect Your Health",
		Description: "Vaccines help protect you from serious diseases and their complications.",
		ImageURL:    "https://images.unsplash.com/photo-1498837167922-ddd27525d352?w=800"},
}

// Fallback returns the static payload served when MyHealthfinder is down.
// Tip dates are spread over the week before now.
func Fallback(now time.Time) Response {
	tips := make([]Tip, len(fallbackTips))
	for i, t := range fallbackTips {
		t.Type = "article"
		t.Date = now.UTC().AddDate(0, 0, -(i % 7))
		tips[i] = t
	}
	return Response{
		Featured: Featured{
			Title:       "Evidence-Based Health Guidance",
			Description: "Get trusted health information and preventive care recommendations from government health experts",
			Image:       "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800",
			ImageAlt:    "Health and wellness",
			Category:    CategoryPrevention,
		},
		Tips:   tips,
		Videos: Videos(),
	}
}
