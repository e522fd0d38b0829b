package alert

// Tick computes the decision for a new sample.
//
// The order of the checks matters:
//  1. a charging battery, or one above the low level, hides the alert and
//     clears suppression (the only way suppression is ever cleared);
//  2. otherwise an unknown reading hides the alert and leaves suppression
//     alone;
//  3. a suppressed alert keeps its current visibility;
//  4. otherwise the alert is shown.
func Tick(s State, sample Sample, p Policy) (Decision, State) {
	if sample.Charging || (sample.Known() && !p.Low(sample.Percentage)) {
		return Decision{}, State{}
	}

	if !sample.Known() {
		s.Visible = false
		s.SecondaryActionEnabled = false
		return Decision{}, s
	}

	pct := sample.Percentage

	if (s.Suppression == SuppressionOnce && !p.Risky(pct)) || s.Suppression == SuppressionSession {
		// Stay quiet. A window left open by a failed secondary action keeps
		// its button in sync with the band.
		if s.Visible {
			s.SecondaryActionEnabled = p.Risky(pct)
		}
		return Decision{Visible: s.Visible, SecondaryActionEnabled: s.SecondaryActionEnabled}, s
	}

	d := Decision{
		Visible:                true,
		SecondaryActionEnabled: p.Risky(pct),
		StatusText:             statusText(pct),
		PresentNow:             !s.Visible,
		ReloadStyle:            !s.Visible,
	}
	s.Visible = true
	s.SecondaryActionEnabled = d.SecondaryActionEnabled
	return d, s
}

// Dismiss hides the alert. A first dismissal in the low band silences it
// until the risk band; a second dismissal, or one made in the risk band,
// silences it for the session.
func Dismiss(s State, percentage int, p Policy) (Decision, State) {
	risky := percentage != Unknown && p.Risky(percentage)
	if s.Suppression != SuppressionNone || risky {
		s.Suppression = SuppressionSession
	} else {
		s.Suppression = SuppressionOnce
	}
	s.Visible = false
	s.SecondaryActionEnabled = false
	return Decision{}, s
}

// RequestSecondaryAction marks the session as suppressed and returns the
// command to launch. It fails when the last decision did not enable the
// secondary action.
func RequestSecondaryAction(s State, command string) (State, Invocation, error) {
	if !s.SecondaryActionEnabled {
		return s, Invocation{}, ErrSecondaryActionUnavailable
	}
	s.Suppression = SuppressionSession
	return s, Invocation{Command: command}, nil
}

// CompleteSecondaryAction applies the outcome of a launch. A successful launch
// hides the alert; a failed one leaves it on screen. Suppression is not
// touched either way.
func CompleteSecondaryAction(s State, launched bool) (Decision, State) {
	if !launched {
		return Decision{Visible: s.Visible, SecondaryActionEnabled: s.SecondaryActionEnabled}, s
	}
	s.Visible = false
	s.SecondaryActionEnabled = false
	return Decision{}, s
}
