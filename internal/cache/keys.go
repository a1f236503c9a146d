package cache

import "fmt"

// Key namespace. All cache keys live under the "testimonials:" prefix
// so a namespace-wide flush cannot touch unrelated data.
const keyPrefix = "testimonials"

func KeyStats() string             { return keyPrefix + ":stats" }
func KeyFeatured() string          { return keyPrefix + ":featured" }
func KeyPublished() string         { return keyPrefix + ":published" }
func KeyCounts() string            { return keyPrefix + ":counts" }
func KeyMediaStats() string        { return keyPrefix + ":media:stats" }
func KeyDashboardOverview() string { return keyPrefix + ":dashboard:overview" }
func KeyDashboardCharts() string   { return keyPrefix + ":dashboard:charts" }

func KeyTestimonial(id uint) string {
	return fmt.Sprintf("%s:testimonial:%d", keyPrefix, id)
}

func KeyCategory(id uint) string {
	return fmt.Sprintf("%s:category:%d", keyPrefix, id)
}

func KeyCategoryTestimonials(id uint) string {
	return fmt.Sprintf("%s:category:%d:testimonials", keyPrefix, id)
}

func KeyCategoryStats(id uint) string {
	return fmt.Sprintf("%s:category:%d:stats", keyPrefix, id)
}

func KeyUserTestimonials(id uint) string {
	return fmt.Sprintf("%s:user:%d:testimonials", keyPrefix, id)
}

func KeyUserStats(id uint) string {
	return fmt.Sprintf("%s:user:%d:stats", keyPrefix, id)
}

func KeyMedia(id uint) string {
	return fmt.Sprintf("%s:media:%d", keyPrefix, id)
}

// listKeys are the aggregate keys touched by any testimonial mutation.
func listKeys() []string {
	return []string{
		KeyStats(),
		KeyFeatured(),
		KeyPublished(),
		KeyCounts(),
		KeyDashboardOverview(),
		KeyDashboardCharts(),
	}
}
