package shell

import "go.uber.org/zap"

// LogScroller is the headless viewport: the gateway has no screen to
// move, so scroll actions become log lines the way notifications do.
type LogScroller struct {
	logger *zap.Logger
}

// NewLogScroller creates a zap-backed scroller.
func NewLogScroller(logger *zap.Logger) *LogScroller {
	return &LogScroller{logger: logger}
}

func (s *LogScroller) ResetToTop() {
	s.logger.Debug("Viewport reset to top")
}

func (s *LogScroller) ScrollToSection(id string) {
	s.logger.Debug("Viewport scrolled to section", zap.String("section", id))
}

// StaticSections is a SectionFinder over a fixed set of section ids. The
// home page renders the same sections every time, so the set is known up
// front.
type StaticSections map[string]struct{}

// HomeSections lists the anchor targets the home page renders.
func HomeSections() StaticSections {
	return StaticSections{
		"destinations":   {},
		"municipalities": {},
		"products":       {},
	}
}

func (s StaticSections) SectionExists(id string) bool {
	_, ok := s[id]
	return ok
}
