package domain

import "strings"

// AdSlot is a logical placement an advertiser can buy.
type AdSlot string

const (
	SlotT20   AdSlot = "T20"
	SlotIPL   AdSlot = "IPL"
	SlotODI   AdSlot = "ODI"
	SlotWPL   AdSlot = "WPL"
	SlotTest  AdSlot = "Test"
	SlotMixed AdSlot = "Mixed"

	SlotQ1Q2 AdSlot = "Q1_Q2"
	SlotQ2Q3 AdSlot = "Q2_Q3"
	SlotQ3Q4 AdSlot = "Q3_Q4"
	SlotQ4Q5 AdSlot = "Q4_Q5"

	SlotAfterQuiz AdSlot = "AfterQuiz"
)

// AdSlotNames maps slots to their admin display names.
var AdSlotNames = map[AdSlot]string{
	SlotT20:       "T20 Cricket",
	SlotIPL:       "IPL League",
	SlotODI:       "One Day International",
	SlotWPL:       "Womens Premier League",
	SlotTest:      "Test Cricket",
	SlotMixed:     "Mixed Format",
	SlotQ1Q2:      "Between Q1-Q2",
	SlotQ2Q3:      "Between Q2-Q3",
	SlotQ3Q4:      "Between Q3-Q4 (Video)",
	SlotQ4Q5:      "Between Q4-Q5",
	SlotAfterQuiz: "After Quiz (Video)",
}

var (
	// VideoSlots are the placements sold as video inventory.
	VideoSlots = []AdSlot{SlotQ3Q4, SlotAfterQuiz}
	// CubeSlots are the brand cube placements on the home screen.
	CubeSlots = []AdSlot{SlotT20, SlotIPL, SlotODI, SlotWPL, SlotTest, SlotMixed}
	// QuizSlots are the placements shown inside a quiz session.
	QuizSlots = []AdSlot{SlotQ1Q2, SlotQ2Q3, SlotQ3Q4, SlotQ4Q5, SlotAfterQuiz}
)

// Valid reports whether s is a known slot.
func (s AdSlot) Valid() bool {
	_, ok := AdSlotNames[s]
	return ok
}

// IsVideoSlot reports whether s is sold as video inventory.
func (s AdSlot) IsVideoSlot() bool {
	for _, v := range VideoSlots {
		if v == s {
			return true
		}
	}
	return false
}

// AdType is the creative kind stored on an ad record.
type AdType string

const (
	AdTypeImage AdType = "image"
	AdTypeVideo AdType = "video"
)

// AdRecord is an advertiser creative managed from the admin dashboard.
type AdRecord struct {
	ID          string  `json:"id"`
	CompanyName string  `json:"companyName"`
	AdSlot      AdSlot  `json:"adSlot"`
	AdType      AdType  `json:"adType"`
	MediaURL    string  `json:"mediaUrl"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
	Revenue     float64 `json:"revenue"`
	IsActive    bool    `json:"isActive"`
}

// IsVideo reports whether the creative plays as video.
func (a AdRecord) IsVideo() bool {
	return a.AdType == AdTypeVideo || strings.Contains(strings.ToLower(a.MediaURL), ".mp4")
}

// InterstitialKind is how an interstitial is presented.
type InterstitialKind string

const (
	InterstitialStatic InterstitialKind = "static"
	InterstitialVideo  InterstitialKind = "video"
)

// InterstitialAdConfig is a display-ready interstitial derived from an AdRecord.
type InterstitialAdConfig struct {
	AdID             string           `json:"adId"`
	Slot             AdSlot           `json:"slot"`
	Kind             InterstitialKind `json:"kind"`
	MediaURL         string           `json:"mediaUrl"`
	RedirectURL      string           `json:"redirectUrl,omitempty"`
	DurationMs       int64            `json:"durationMs"`
	SkippableAfterMs int64            `json:"skippableAfterMs"`
	SponsorLabel     string           `json:"sponsorLabel"`
}
