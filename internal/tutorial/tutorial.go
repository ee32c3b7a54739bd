// Package tutorial runs the fixed create, query, dump, update and delete
// sequence against a store.
package tutorial

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"blog/internal/models"
	"blog/internal/store"
)

// Run declares the schema and walks through every store operation once,
// each step in its own transaction. The JSON dump of all users is written
// to out. The first failing step aborts the run.
func Run(ctx context.Context, st *store.Store, out io.Writer, log logrus.FieldLogger) error {
	if err := models.DeclareSchema(ctx, st); err != nil {
		return errors.Wrap(err, "declare schema")
	}

	steps := []struct {
		name string
		fn   func(tx *store.Tx) error
	}{
		{"create", func(tx *store.Tx) error { return create(tx, log) }},
		{"query", func(tx *store.Tx) error { return query(tx, log) }},
		{"dump", func(tx *store.Tx) error { return models.Dump(tx, out) }},
		{"update", func(tx *store.Tx) error { return update(tx, log) }},
		{"delete", func(tx *store.Tx) error { return remove(tx, log) }},
		{"scratch", func(tx *store.Tx) error { return scratch(tx, log) }},
	}
	for _, s := range steps {
		if err := st.Transact(ctx, s.fn); err != nil {
			return errors.Wrapf(err, "step %s", s.name)
		}
		log.WithField("step", s.name).Debug("committed")
	}
	return nil
}

func create(tx *store.Tx, log logrus.FieldLogger) error {
	u, err := models.NewUser("Joe", "Secret", time.Now())
	if err != nil {
		return err
	}
	joe, err := store.Insert(tx, u)
	if err != nil {
		return err
	}
	post, err := store.Insert(tx, models.NewPost(joe, "This is the Title!", "This is the Body!", time.Now()))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"user": joe.ID(), "post": post.ID()}).Info("created user and post")
	return nil
}

func findJoe(tx *store.Tx) (store.Ref[models.User], error) {
	joe, ok, err := models.FindUserByName(tx, "Joe")
	if err != nil {
		return joe, err
	}
	if !ok {
		return joe, errors.New("no user named Joe")
	}
	return joe, nil
}

func query(tx *store.Tx, log logrus.FieldLogger) error {
	joe, err := findJoe(tx)
	if err != nil {
		return err
	}
	n, err := store.Count[models.User](tx, store.Eq("name", "Joe"))
	if err != nil {
		return err
	}
	posts, err := joe.Get().Posts(tx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"ctime": joe.Get().CTime,
		"count": n,
		"posts": len(posts),
	}).Info("found Joe")
	return nil
}

func update(tx *store.Tx, log logrus.FieldLogger) error {
	joe, err := findJoe(tx)
	if err != nil {
		return err
	}
	var hashErr error
	if _, err := store.Modify(tx, joe, func(u *models.User) { hashErr = u.SetPassword("public") }); err != nil {
		return err
	}
	if hashErr != nil {
		return hashErr
	}
	log.WithField("user", joe.ID()).Info("changed password")
	return nil
}

func remove(tx *store.Tx, log logrus.FieldLogger) error {
	joe, ok, err := models.FindUserByName(tx, "Joe")
	if err != nil || !ok {
		return err
	}
	if err := store.Remove(tx, joe); err != nil {
		return err
	}
	log.WithField("user", joe.ID()).Info("removed Joe with posts")
	return nil
}

// scratch adds, renames and removes a user inside one scope, leaving no trace.
func scratch(tx *store.Tx, log logrus.FieldLogger) error {
	u, err := models.NewUser("Silly", "silly", time.Now())
	if err != nil {
		return err
	}
	silly, err := store.Insert(tx, u)
	if err != nil {
		return err
	}
	if silly, err = store.Modify(tx, silly, func(u *models.User) { u.Name = "Sillier" }); err != nil {
		return err
	}
	if err := store.Remove(tx, silly); err != nil {
		return err
	}
	log.WithField("user", silly.ID()).Debug("scratch user gone")
	return nil
}
