package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func stage(t *testing.T, p mongo.Pipeline, name string) bson.D {
	t.Helper()
	for _, s := range p {
		if s[0].Key == name {
			d, ok := s[0].Value.(bson.D)
			require.True(t, ok, "stage %s is not a document", name)
			return d
		}
	}
	t.Fatalf("stage %s not found", name)
	return nil
}

func toMap(d bson.D) map[string]any {
	m := make(map[string]any, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

func TestMoviesWithRatingsPipeline(t *testing.T) {
	t.Parallel()

	p := moviesWithRatingsPipeline()
	assert.Equal(t, []string{"$match", "$lookup", "$addFields", "$project", "$sort"}, stageNames(p))

	lookup := toMap(stage(t, p, "$lookup"))
	assert.Equal(t, ReviewsCollection, lookup["from"])
	assert.Equal(t, "_id", lookup["localField"])
	assert.Equal(t, "movieId", lookup["foreignField"])

	sort := stage(t, p, "$sort")
	assert.Equal(t, bson.E{Key: "avgRating", Value: -1}, sort[0])
}

func TestMovieDetailPipeline(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	p := movieDetailPipeline(id)
	assert.Equal(t, []string{"$match", "$limit", "$lookup", "$addFields"}, stageNames(p))

	match := toMap(stage(t, p, "$match"))
	assert.Equal(t, id, match["_id"])
	assert.Contains(t, match, "title")
}

func TestReviewsWithMoviesPipeline_KeepsOrphans(t *testing.T) {
	t.Parallel()

	p := reviewsWithMoviesPipeline(nil)
	assert.Empty(t, stage(t, p, "$match"))

	unwind := toMap(stage(t, p, "$unwind"))
	assert.Equal(t, "$movie", unwind["path"])
	assert.Equal(t, true, unwind["preserveNullAndEmptyArrays"])
}

func TestReviewsWithMoviesPipeline_FiltersByMovie(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	p := reviewsWithMoviesPipeline(&id)
	assert.Equal(t, bson.D{{Key: "movieId", Value: id}}, stage(t, p, "$match"))
}

func TestParseID(t *testing.T) {
	t.Parallel()

	_, err := parseID("not-an-id")
	require.ErrorIs(t, err, ErrInvalidID)

	id := bson.NewObjectID()
	got, err := parseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestFilterMovieID(t *testing.T) {
	t.Parallel()

	got, err := filterMovieID(models.ReviewFilter{})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = filterMovieID(models.ReviewFilter{MovieID: "zzz"})
	require.ErrorIs(t, err, ErrInvalidID)
}
