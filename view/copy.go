package view

import (
	"github.com/RoyXiang/posterbot/grid"
)

// Copy is the user-facing text the bot sends.
type Copy struct {
	Welcome    string
	Help       string
	About      string
	FAQ        string
	Disclaimer string

	NeedYear    string
	NoResult    string
	SearchError string
	Expired     string
	NoImages    string
	Failure     string
	Closed      string
}

// Config is everything the screen builder needs besides the record.
type Config struct {
	Grid      grid.Config
	Copy      Copy
	PlotLimit int
}

func DefaultConfig() Config {
	return Config{
		Grid:      grid.DefaultConfig(),
		Copy:      DefaultCopy(),
		PlotLimit: 800,
	}
}

func DefaultCopy() Copy {
	return Copy{
		Welcome: "Welcome! Send me a movie or TV show name to get started.\n\nE.g. <code>The Matrix 1999</code>",
		Help: "Send a title with its year, for example <code>Inception 2010</code>. " +
			"Then use the buttons to browse posters and backdrops by language and download the ones you like.",
		About: "<b>About PosterFlix</b>\n\n" +
			"This bot lets you preview and download official movie and TV show posters and backdrops from The Movie Database (TMDB).\n\n" +
			"<b>Features include:</b>\n• High-resolution image access\n• Multi-language support\n• Smart search",
		FAQ: "<b>Frequently Asked Questions</b>\n\n" +
			"<b>Q: Do you host any images?</b>\nA: No, all images are fetched directly from TMDB's servers.\n\n" +
			"<b>Q: Is this bot affiliated with TMDB?</b>\nA: No. It uses TMDB's public API and is not endorsed by TMDB.\n\n" +
			"<b>Q: How fresh is the data?</b>\nA: Data is fetched live from TMDB on every search.",
		Disclaimer: "<b>Legal Disclaimer</b>\n\n" +
			"This bot uses the TMDB API but is not endorsed or certified by TMDB. " +
			"All images, trademarks, and copyrighted material belong to their respective owners.\n\n" +
			"This service is for personal, non-commercial use only.",

		NeedYear:    "Please include the year for better results (e.g. <code>Inception 2010</code>).",
		NoResult:    "😕 Sorry, couldn't find anything for <b>%s</b>. Please check the spelling and year.",
		SearchError: "⚠️ The search service is not responding right now. Please try again in a moment.",
		Expired:     "Sorry, this session has expired. Please search again.",
		NoImages:    "No images found for this selection.",
		Failure:     "Something went wrong. Please try again.",
		Closed:      "Closed.",
	}
}
