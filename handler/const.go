package handler

import "time"

const (
	// updateTimeout bounds the work done for a single update after the
	// webhook has accepted it.
	updateTimeout = 2 * time.Minute

	maxUpdateSize = 1 << 20

	commandStart      = "/start"
	commandHelp       = "/help"
	commandAbout      = "/about"
	commandFAQ        = "/faq"
	commandDisclaimer = "/disclaimer"
)
