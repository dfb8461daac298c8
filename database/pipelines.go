package database

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// hasTitle 没有 title 的电影文档视为不存在
var hasTitle = bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}

// movieFilter 只匹配带 title 的电影，extra 追加额外条件
func movieFilter(extra ...bson.E) bson.D {
	filter := bson.D{{Key: "title", Value: hasTitle}}
	return append(filter, extra...)
}

// lookupReviews 左连接：电影 _id <-> 评论 movieId，没有评论时 reviews 为空数组
func lookupReviews() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: ReviewsCollection},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "movieId"},
		{Key: "as", Value: "reviews"},
	}}}
}

// addAvgRating 空数组的 $avg 结果为 null
func addAvgRating() bson.D {
	return bson.D{{Key: "$addFields", Value: bson.D{
		{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
	}}}
}

// moviesWithRatingsPipeline 所有电影附带平均评分，按评分降序
// BSON 排序中 null 小于任何数字，所以没有评论的电影排在最后
func moviesWithRatingsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: movieFilter()}},
		lookupReviews(),
		addAvgRating(),
		{{Key: "$project", Value: bson.D{{Key: "reviews", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgRating", Value: -1}, {Key: "title", Value: 1}}}},
	}
}

// movieDetailPipeline 单个电影连同它的评论
func movieDetailPipeline(id bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: movieFilter(bson.E{Key: "_id", Value: id})}},
		{{Key: "$limit", Value: 1}},
		lookupReviews(),
		addAvgRating(),
	}
}

// reviewFilter 按电影过滤评论，movieID 为 nil 时不过滤
func reviewFilter(movieID *bson.ObjectID) bson.D {
	if movieID == nil {
		return bson.D{}
	}
	return bson.D{{Key: "movieId", Value: *movieID}}
}

// reviewsWithMoviesPipeline 评论连同引用的电影
// $unwind 保留没有匹配电影的评论（孤立引用），此时 movie 字段缺失
func reviewsWithMoviesPipeline(movieID *bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: reviewFilter(movieID)}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MoviesCollection},
			{Key: "localField", Value: "movieId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "movie"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$movie"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}
