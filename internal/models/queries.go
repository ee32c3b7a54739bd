package models

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"blog/internal/store"
)

// DeclareSchema creates the user and post tables if they are missing.
func DeclareSchema(ctx context.Context, st *store.Store) error {
	return st.DeclareSchema(ctx, userTable, postTable)
}

// FindUserByName returns the first user called name.
func FindUserByName(tx *store.Tx, name string) (store.Ref[User], bool, error) {
	return store.FindOne[User](tx, store.Eq("name", name))
}

// Posts returns the posts owned by u.
func (u *User) Posts(tx *store.Tx) ([]store.Ref[Post], error) {
	return store.Collect(store.FindWhere[Post](tx, store.Eq("user_id", u.ID)))
}

// Owner returns the user that owns p.
func (p *Post) Owner(tx *store.Tx) (store.Ref[User], bool, error) {
	return store.Fetch[User](tx, p.UserID)
}

type userDoc struct {
	*User
	Posts []*Post `json:"posts"`
}

// Dump writes every user, each with its posts, to w as indented JSON. The
// output is meant for reading, not for loading back.
func Dump(tx *store.Tx, w io.Writer) error {
	users, err := store.Collect(store.FindAll[User](tx))
	if err != nil {
		return err
	}
	docs := make([]userDoc, 0, len(users))
	for _, ref := range users {
		u := ref.Get()
		posts, err := u.Posts(tx)
		if err != nil {
			return err
		}
		doc := userDoc{User: u, Posts: make([]*Post, 0, len(posts))}
		for _, p := range posts {
			doc.Posts = append(doc.Posts, p.Get())
		}
		docs = append(docs, doc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(docs), "models: encode dump")
}
