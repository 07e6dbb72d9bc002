package model

// EpisodePage is the __NEXT_DATA__ payload of an episode page.
type EpisodePage struct {
	Props struct {
		PageProps struct {
			Episode Episode `json:"episode"`
		} `json:"pageProps"`
	} `json:"props"`
}

type Episode struct {
	Eid         string    `json:"eid"`
	Pid         string    `json:"pid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Enclosure   Enclosure `json:"enclosure"`
	Media       Media     `json:"media"`
	Duration    int       `json:"duration"`
	Podcast     struct {
		Title string `json:"title"`
	} `json:"podcast"`
}

type Enclosure struct {
	URL string `json:"url"`
}

type Source struct {
	Mode string `json:"mode"`
	URL  string `json:"url"`
}

type Media struct {
	ID       string `json:"id"`
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Source   Source `json:"source"`
}

// AudioURL prefers the enclosure and falls back to the media source.
func (e Episode) AudioURL() string {
	if e.Enclosure.URL != "" {
		return e.Enclosure.URL
	}
	return e.Media.Source.URL
}
