package browser

// Selectors and page scripts for the Skedda-style booking portal. The grid is
// a client-rendered single page app, so everything here reads the live DOM
// rather than static HTML.
const (
	bookingCellSelector = ".booking-div-content"
	scheduleSelector    = ".booking-div-content, [class*='schedule'], [class*='calendar'], [class*='grid']"

	visitorModeMarker       = "VISITOR MODE"
	limitedVisibilityMarker = "LIMITED VISIBILITY"
)

// Candidate selectors tried in order during login. The portal has shuffled
// its markup before, so each step probes a list instead of pinning one.
var (
	loginLinkPatterns = []string{"log in", "login", "sign in"}

	usernameSelectors = []string{
		"input[type='email']",
		"input[name*='email']",
		"input[id*='email']",
		"input[name*='user']",
		"input[type='text']",
	}

	passwordSelectors = []string{
		"input[type='password']",
	}

	submitSelectors = []string{
		"button[type='submit']",
		"input[type='submit']",
	}

	confirmPatterns = []string{"confirm booking", "confirm", "book"}
)

// collectCellsScript returns every visible booking element with its viewport
// geometry. Icon classes are folded into the class field because the visitor
// markers (fa-ban vs fa-user) live on a child <i>, not the cell itself.
const collectCellsScript = `(() => {
	const out = [];
	for (const el of document.querySelectorAll('.booking-div-content')) {
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) continue;
		const icons = Array.from(el.querySelectorAll('i, svg'))
			.map(n => n.getAttribute('class') || '')
			.join(' ');
		out.push({
			text: (el.textContent || '').replace(/\s+/g, ' ').trim(),
			x: r.x,
			y: r.y,
			width: r.width,
			height: r.height,
			class: ((el.getAttribute('class') || '') + ' ' + icons).trim()
		});
	}
	return out;
})()`

// scheduleReadyScript reports whether the grid has rendered anything yet.
const scheduleReadyScript = `(() =>
	!!document.querySelector(".booking-div-content, [class*='schedule'], [class*='calendar'], [class*='grid']")
)()`

// pageTextScript returns the full visible text for marker scans.
const pageTextScript = `(() => (document.body && document.body.innerText) || '')()`

// clickByTextScript clicks the first anchor or button whose text or href
// matches one of the given lowercase patterns. Takes a JSON string array,
// returns whether anything was clicked.
const clickByTextScript = `((patterns) => {
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim().toLowerCase();
	for (const el of document.querySelectorAll("a, button, [role='button'], input[type='submit']")) {
		const text = norm(el.textContent || el.value);
		const href = (el.getAttribute('href') || '').toLowerCase();
		for (const p of patterns) {
			if (text === p || href.includes(p)) {
				el.click();
				return true;
			}
		}
	}
	for (const el of document.querySelectorAll("a, button, [role='button']")) {
		const text = norm(el.textContent);
		for (const p of patterns) {
			if (text.includes(p)) {
				el.click();
				return true;
			}
		}
	}
	return false;
})(%s)`

// probeSelectorScript returns the first selector from a JSON string array
// that matches a visible element, or the empty string.
const probeSelectorScript = `((selectors) => {
	for (const sel of selectors) {
		try {
			const el = document.querySelector(sel);
			if (el && el.offsetParent !== null) return sel;
		} catch (e) {}
	}
	return '';
})(%s)`

// clickSlotScript clicks the first grid element containing the given time
// range text. Takes a JSON string, returns whether anything was clicked.
const clickSlotScript = `((needle) => {
	const candidates = document.querySelectorAll("[class*='booking'], [class*='slot'], button");
	for (const el of candidates) {
		const text = (el.textContent || '').replace(/\s+/g, ' ');
		if (text.includes(needle)) {
			el.click();
			return true;
		}
	}
	return false;
})(%s)`

// outcomeScript samples the indicators the portal shows after a booking
// attempt: dialogs still open, forms pending, and success or error text.
const outcomeScript = `(() => {
	const text = ((document.body && document.body.innerText) || '').toLowerCase();
	return {
		success: /success|confirmed|booked/.test(text),
		failure: /error|failed|unavailable|not available/.test(text),
		modals: document.querySelectorAll("[class*='modal'], [class*='dialog'], [class*='popup']").length,
		forms: document.querySelectorAll('form').length
	};
})()`

// dismissDialogScript closes any leftover modal so a fresh navigation starts
// from a clean grid.
const dismissDialogScript = `(() => {
	for (const el of document.querySelectorAll("button, [aria-label='Close']")) {
		const text = ((el.textContent || '') + (el.getAttribute('aria-label') || '')).trim().toLowerCase();
		if (text === 'close' || text === '×' || text === 'cancel') {
			el.click();
			return true;
		}
	}
	return false;
})()`
