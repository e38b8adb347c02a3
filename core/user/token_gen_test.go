package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/okfines/core"
)

func Test_makeToken(t *testing.T) {
	usr := User{ID: "8c28a07a-a3a6-4e18-9c27-6e23b67233c", Email: "admin@test.cd"}
	_ = usr.SetPassword("LordOfTheRings")

	t.Run("valid token", func(t *testing.T) {
		token, err := MakeToken(usr)
		assert.NoError(t, err)
		assert.NoError(t, verifyToken(usr, token))
	})

	t.Run("token is single use", func(t *testing.T) {
		token, err := MakeToken(usr)
		assert.NoError(t, err)

		// password change invalidates it
		changed := usr
		_ = changed.SetPassword("TheHobbit")
		assert.Equal(t, errInvalidToken, verifyToken(changed, token))

		// a login invalidates it
		loggedIn := usr
		loggedIn.LastLogin = time.Now().UTC()
		assert.Equal(t, errInvalidToken, verifyToken(loggedIn, token))
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := MakeToken(usr)
		assert.NoError(t, err)
		assert.Equal(t, errInvalidToken, verifyToken(usr, token+"x"))
		assert.Equal(t, errInvalidToken, verifyToken(usr, ""))
		assert.Equal(t, errInvalidToken, verifyToken(usr, "no-dash-here"[0:7]))
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-(core.Conf.PasswordResetTimeoutDelta + 48*time.Hour))
		core.NowFunc = func() time.Time { return past }
		defer func() { core.NowFunc = time.Now }()

		token, err := MakeToken(usr)
		assert.NoError(t, err)
		core.NowFunc = time.Now // reset
		assert.Equal(t, errTokenExpired, verifyToken(usr, token))
	})
}
