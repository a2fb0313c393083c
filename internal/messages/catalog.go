package messages

// defaultCatalog returns the built-in content tables. Copy here is data, not
// logic: deployments can swap pools with WithPool without touching the
// selection contract.
func defaultCatalog() map[Context][]template {
	return map[Context][]template{
		ContextFourDay: {
			{"Heads up", "\"%s\" is coming due in a few days. A little progress now saves a panic later."},
			{"Early warning", "\"%s\" is on the horizon. Future you says thanks."},
			{"Gentle nudge", "Remember \"%s\"? It hasn't forgotten about you."},
		},
		ContextOneDay: {
			{"Due tomorrow", "\"%s\" is due tomorrow. Today would be a great day to start."},
			{"Clock's ticking", "One day left on \"%s\". You've got this."},
			{"Tomorrow's problem is today's", "\"%s\" lands tomorrow. Get ahead of it."},
		},
		ContextDayOf: {
			{"Due today", "\"%s\" is due today. Drop the other thing."},
			{"It's time", "Today is the day for \"%s\". No, really."},
			{"Now or never", "\"%s\" is due today and it won't do itself."},
		},
		ContextOverdue: {
			{"Past due", "\"%s\" slipped past its deadline. Rescue it before it gets worse."},
			{"Still waiting", "\"%s\" is overdue and judging you quietly."},
			{"Overdue alert", "\"%s\" went overdue. Knock it out and clear your conscience."},
		},

		ContextWayUnder: {
			{"Crushed it", "You finished \"%s\" in half your estimate. Sandbagging, or just brilliant?"},
			{"Lightning fast", "\"%s\" took way less time than you guessed. Nice."},
		},
		ContextUnder: {
			{"Ahead of schedule", "\"%s\" came in under estimate. Solid work."},
			{"Quick work", "Faster than you predicted on \"%s\". Momentum!"},
		},
		ContextSpotOn: {
			{"Nailed the estimate", "\"%s\" took almost exactly as long as you guessed. Calibrated!"},
			{"Right on target", "Your estimate for \"%s\" was spot on."},
		},
		ContextOver15x: {
			{"A bit over", "\"%s\" ran about 50%% past your estimate. Happens to everyone."},
			{"Slightly long", "\"%s\" took longer than planned. Adjust next time?"},
		},
		ContextOver2x: {
			{"Double time", "\"%s\" took twice the estimate. Maybe pad the next guess."},
			{"Well over", "\"%s\" blew past your estimate by 2x. Noted for next time."},
		},
		ContextOver3x: {
			{"Estimate archaeology", "\"%s\" took over three times your estimate. Was the estimate a prayer?"},
			{"Way over", "\"%s\" ran 3x long. Future estimates deserve honesty."},
		},

		ContextMilestone: {
			{"Still at it", "You've been focused on \"%s\" for a while. Stretch, hydrate, continue."},
			{"Time check", "Long session on \"%s\". Take a breath if you need one."},
		},
		ContextOverage: {
			{"Past the estimate", "\"%s\" has run past your estimate. Keep going or re-scope?"},
			{"Longer than planned", "\"%s\" is taking longer than you guessed. That's okay. Finish strong."},
		},

		ContextPick: {
			{"Your mission", "The wheel has spoken: \"%s\". Go."},
			{"Chosen for you", "Today's lucky winner is \"%s\"."},
			{"No more deciding", "Decision fatigue solved. Do \"%s\"."},
		},
		ContextAllOverdue: {
			{"Everything's on fire", "Every single task is overdue. Pick any of them, starting with \"%s\"."},
			{"Full meltdown", "All overdue. All of them. Start with \"%s\" and dig out."},
		},
		ContextEscalation: {
			{"Earn your freedom", "You asked twice. Now finish \"%s\" before picking again."},
			{"Locked in", "No more re-rolls. \"%s\" is the task. Complete it to earn your choices back."},
		},

		ContextCalibGood: {
			{"Well calibrated", "Your estimates have been landing close to reality lately. Trust them."},
		},
		ContextCalibBad: {
			{"Calibration drifting", "Your estimates and reality have been drifting apart. Guess bigger."},
		},
	}
}
