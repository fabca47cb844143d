package analyzer

import (
	"strings"
)

func checkUnpinnedBaseImage(w *walkInfo, _ Config, s *sink) {
	for _, f := range w.dockerFroms {
		if f.Image == "scratch" {
			continue
		}
		switch {
		case f.Digest != "":
			// pinned by digest, nothing to report
		case f.Tag == "":
			s.add(Warning, f.Span,
				f.Image+" has no tag and floats with the registry's latest",
				f.Image+":<tag> or "+f.Image+"@sha256:<digest>")
		case f.Tag == "latest":
			s.add(Warning, f.Span,
				f.Image+":latest changes whenever the registry does",
				f.Image+":<tag> or "+f.Image+"@sha256:<digest>")
		}
	}
}

func checkRemoteAdd(w *walkInfo, _ Config, s *sink) {
	for _, inst := range w.dockerInsts {
		if inst.Name != "ADD" {
			continue
		}
		for _, a := range strings.Fields(inst.Args) {
			if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
				s.add(Error, inst.Span,
					"ADD fetches "+a+" without any integrity check",
					"RUN curl with an explicit checksum verification, or COPY a vendored copy")
			}
		}
	}
}

// checkRunConsolidation flags runs of consecutive RUN instructions.
// Each RUN is a layer, and split package-manager calls defeat cache
// invalidation on top of the size cost.
func checkRunConsolidation(w *walkInfo, _ Config, s *sink) {
	runStreak := 0
	for _, inst := range w.dockerInsts {
		if inst.Name != "RUN" {
			runStreak = 0
			continue
		}
		runStreak++
		if runStreak == 2 {
			s.add(Info, inst.Span,
				"consecutive RUN instructions create a layer each",
				"join them with && into one RUN")
		}
	}
}
