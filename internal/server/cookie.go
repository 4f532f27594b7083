package server

import (
	"errors"
	"net/http"
)

// cookieStorage is an experiment.SessionStorage backed by browser session
// cookies. Cookies set without Max-Age or Expires end with the browser
// session, which is the closest server-side match for tab-scoped storage.
type cookieStorage struct {
	w   http.ResponseWriter
	r   *http.Request
	set map[string]string
}

func newCookieStorage(w http.ResponseWriter, r *http.Request) *cookieStorage {
	return &cookieStorage{w: w, r: r, set: make(map[string]string)}
}

func (c *cookieStorage) Get(key string) (string, bool, error) {
	if v, ok := c.set[key]; ok {
		return v, true, nil
	}
	cookie, err := c.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

func (c *cookieStorage) Set(key, value string) error {
	cookie := &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.r.TLS != nil,
	}
	if err := cookie.Valid(); err != nil {
		return err
	}
	http.SetCookie(c.w, cookie)
	c.set[key] = value
	return nil
}
