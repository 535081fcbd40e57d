package core

import (
	"fmt"

	"carouselcraft.io/carousel-studio/internal/store"
)

// Fallback builds the fixed carousel used when the model cannot be reached or
// its reply cannot be used. slideCount includes the subscribe slide.
func Fallback(subject string, slideCount int) *GeneratedCarousel {
	if slideCount < 4 {
		slideCount = minimumSlides
	}

	coverSubtitle := "Built a Winning Strategy"
	slides := []store.Slide{{
		Type:     store.SlideCover,
		Title:    fmt.Sprintf("How %s", subject),
		Subtitle: &coverSubtitle,
	}}

	for i := 2; i <= slideCount-2; i++ {
		s := store.Slide{
			Type:  store.SlideContent,
			Title: fmt.Sprintf("Key Insight %d", i-1),
			Body: store.Bullets{Items: []string{
				fmt.Sprintf("Important point about %s", subject),
				"Strategic approach that worked",
				"Results and impact achieved",
			}},
		}
		if i == 2 {
			stats := "Founded in 2010"
			s.Stats = &stats
		}
		slides = append(slides, s)
	}

	slides = append(slides,
		store.Slide{
			Type:  store.SlideCTA,
			Title: "Key Takeaway",
			Body: store.Bullets{Items: []string{
				"Apply these insights to your strategy",
				"Follow for more content like this",
				"What did you learn from this?",
			}},
		},
		store.Slide{Type: store.SlideSubscribe, Title: subscribeHeading},
	)
	renumber(slides)

	return &GeneratedCarousel{
		Title:    fmt.Sprintf("How %s Built a Winning Strategy", subject),
		Slides:   slides,
		Hashtags: []string{"#Strategy", "#Business", "#Growth"},
		Fallback: true,
	}
}
