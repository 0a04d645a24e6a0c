// internal/locale/bundle.go
//
// Translation bundle (go-i18n).
//
// Context
// -------
// User-visible strings emitted by the gates (the admin denial warning,
// the coming-soon notice) must follow the effective locale.  We keep one
// process-wide i18n bundle loaded from `conf/locales/<tag>.yaml` and hand
// out per-locale localizers.  Missing translations fall back to the
// message ID's Other form, so an unfinished locale never breaks a page.
package locale

import (
	"path/filepath"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"
)

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle

	locMu      sync.RWMutex
	localizers = map[string]*i18n.Localizer{}
)

// LoadBundle parses every message file under dir (conf/locales).  Safe to
// call once during boot; later calls are no-ops.
func LoadBundle(dir string, tags []string) {
	bundleOnce.Do(func() {
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
		for _, tag := range tags {
			path := filepath.Join(dir, tag+".yaml")
			if _, err := bundle.LoadMessageFile(path); err != nil {
				zap.S().Warnw("locale file skipped", "file", path, "err", err)
			}
		}
	})
}

// T translates id for the given locale, falling back to defaultMsg when
// either the bundle or the message is missing.
func T(loc, id, defaultMsg string) string {
	if bundle == nil {
		return defaultMsg
	}

	locMu.RLock()
	l, ok := localizers[loc]
	locMu.RUnlock()
	if !ok {
		l = i18n.NewLocalizer(bundle, loc)
		locMu.Lock()
		localizers[loc] = l
		locMu.Unlock()
	}

	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID: id,
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: defaultMsg,
		},
	})
	if err != nil {
		return defaultMsg
	}
	return msg
}
