package web

import (
	"net/http"
	"net/url"
)

// Notice is a one-shot status message rendered on the page a form redirects to.
type Notice struct {
	Level string
	Text  string
}

const (
	levelSuccess = "success"
	levelWarning = "warning"
	levelDanger  = "danger"
)

const (
	noticeTopicAdded     = "topic-added"
	noticeTopicUpdated   = "topic-updated"
	noticeTopicDeleted   = "topic-deleted"
	noticeFieldsRequired = "fields-required"
	noticeTopicExists    = "topic-exists"
	noticeNameTaken      = "name-taken"
)

var notices = map[string]Notice{
	noticeTopicAdded:     {Level: levelSuccess, Text: "Topic added"},
	noticeTopicUpdated:   {Level: levelSuccess, Text: "Topic updated"},
	noticeTopicDeleted:   {Level: levelSuccess, Text: "Topic deleted"},
	noticeFieldsRequired: {Level: levelDanger, Text: "Name and explanation are required"},
	noticeTopicExists:    {Level: levelWarning, Text: "This topic already exists"},
	noticeNameTaken:      {Level: levelWarning, Text: "Another topic already has this name"},
}

// noticeFrom resolves the notice code carried by the request, if any.
// Unknown codes yield nil.
func noticeFrom(r *http.Request) *Notice {
	n, ok := notices[r.URL.Query().Get("notice")]
	if !ok {
		return nil
	}
	return &n
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, code string) {
	target := path + "?" + url.Values{"notice": {code}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}
