/*
Package samples generates example input files for Mailout.
*/
package samples

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleCSV = `email,name
john.doe@example.com,John Doe
jane.smith@example.com,Jane Smith
vietnam.lover@example.com,Vietnam Enthusiast
`

const sampleTemplate = `Discover the Beauty of Vietnam, {name}!
---
Dear {name},

Vietnam is a country located in Southeast Asia, known for its diverse landscapes and rich culture.

Vietnam is also famous for its unique cuisine, from pho and banh mi to regional specialties.

The country's folk culture, traditional festivals, and warm hospitality make it a truly special destination.

We hope you'll consider visiting Vietnam soon!

Best regards,
Vietnam Tourism Team
`

const sampleHTMLTemplate = `<html>
  <body>
    <h1>Discover the Beauty of Vietnam, {name}!</h1>
    <p>Dear {name},</p>
    <p>Vietnam is a country located in Southeast Asia, known for its
    diverse landscapes and rich culture.</p>
    <p>Vietnam is also famous for its unique cuisine, from pho and banh mi
    to regional specialties.</p>
    <p>We hope you'll consider visiting Vietnam soon!</p>
    <p>Best regards,<br>Vietnam Tourism Team</p>
  </body>
</html>
`

const sampleEnv = `# Mailout credentials and settings
EMAIL_ADDRESS=you@gmail.com
EMAIL_PASSWORD=your-gmail-app-password
FROM_NAME=Vietnam Tourism Team
SMTP_SERVER=smtp.gmail.com
SMTP_PORT=587
DEFAULT_SUBJECT=Explore Vietnam
RATE_LIMIT_DELAY=1.0
SEND_TIMEOUT=30
`

// Files lists the sample files Create writes, in creation order.
var Files = []struct {
	Name    string
	Content string
}{
	{"sample_emails.csv", sampleCSV},
	{"sample_template.txt", sampleTemplate},
	{"sample_template.html", sampleHTMLTemplate},
	{".env.example", sampleEnv},
}

// Create writes the sample files into dir and returns the names of the
// files it created and the names it skipped. Existing files are never
// overwritten; they are skipped and the remaining files are still
// created.
func Create(dir string) (created, skipped []string, err error) {
	for _, f := range Files {
		path := filepath.Join(dir, f.Name)
		if _, statErr := os.Stat(path); statErr == nil {
			skipped = append(skipped, f.Name)
			continue
		}
		if writeErr := os.WriteFile(path, []byte(f.Content), 0644); writeErr != nil {
			return created, skipped, fmt.Errorf("failed to write %s: %w", path, writeErr)
		}
		created = append(created, f.Name)
	}
	return created, skipped, nil
}
