package main

import (
	"fmt"
	"log"

	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
	"gorm.io/gorm"
)

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	if err := db.EnsureUser(gdb, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("管理员创建失败:", err)
	}
	if err := seedAll(gdb); err != nil {
		log.Fatal("测试数据生成失败:", err)
	}

	fmt.Println("测试数据生成完成！")
}

func seedAll(gdb *gorm.DB) error {
	if err := createBlogCategories(gdb); err != nil {
		return err
	}
	if err := createAboutPage(gdb); err != nil {
		return err
	}
	if err := createTestPosts(gdb); err != nil {
		return err
	}
	return createTestArtworks(gdb)
}

// 创建博客分类
func createBlogCategories(gdb *gorm.DB) error {
	var count int64
	gdb.Model(&db.BlogCategory{}).Count(&count)
	if count > 0 {
		fmt.Println("分类已存在，跳过创建")
		return nil
	}

	for _, name := range []string{"Process", "Tutorials", "Photography", "News"} {
		category := db.BlogCategory{Name: name, Slug: service.Slugify(name)}
		if err := gdb.Create(&category).Error; err != nil {
			return fmt.Errorf("create category %s: %w", name, err)
		}
	}

	fmt.Println("✅ 博客分类创建完成")
	return nil
}

// 创建关于我页面
func createAboutPage(gdb *gorm.DB) error {
	pages := service.NewPageService(gdb)
	existing, err := pages.GetBySlug("about")
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println("关于页已存在，跳过创建")
		return nil
	}

	content := "## Hi, I make things\n\n- 3D characters and environments\n- Illustration and concept art\n- Street and travel photography\n\nhttps://sketchfab.com/3d-models/robot-0123456789abcdef0123456789abcdef"
	if _, err := pages.SaveAboutPage("About", content); err != nil {
		return fmt.Errorf("create about page: %w", err)
	}

	fmt.Println("✅ 关于我页面创建完成")
	return nil
}

// 创建测试文章，已有文章时跳过
func createTestPosts(gdb *gorm.DB) error {
	var count int64
	gdb.Model(&db.BlogPost{}).Count(&count)
	if count > 0 {
		fmt.Println("文章已存在，跳过创建")
		return nil
	}

	posts := service.NewPostService(gdb)
	inputs := []service.PostInput{
		{
			Title:     "Sculpting a Stylized Fox",
			Excerpt:   "From blockout to final render in Blender.",
			Content:   "## Blockout\n\nStart with primitive shapes.\n\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n\n## Retopology\n\nKeep the loops clean around the eyes.",
			Category:  "Process",
			Tags:      []string{"blender", "3d"},
			Published: true,
			Featured:  true,
		},
		{
			Title:     "Color Keys for Illustration",
			Content:   "Pick three values before you pick any hue.\n\n| Value | Use |\n| --- | --- |\n| Dark | Shadows |\n| Mid | Forms |\n| Light | Focus |",
			Category:  "Tutorials",
			Tags:      []string{"2d", "color"},
			Published: true,
		},
		{
			Title:     "Night Walks in Kyoto",
			Content:   "Notes and settings from a week of handheld night photography.",
			Category:  "Photography",
			Tags:      []string{"travel"},
			Published: true,
		},
		{
			Title:    "Upcoming Print Sale",
			Content:  "Draft announcement for the spring print sale.",
			Category: "News",
		},
	}

	for _, input := range inputs {
		if _, err := posts.Create(input); err != nil {
			return fmt.Errorf("create post %q: %w", input.Title, err)
		}
	}

	fmt.Printf("✅ %d 篇文章创建完成\n", len(inputs))
	return nil
}

// 创建三个作品集的测试作品
func createTestArtworks(gdb *gorm.DB) error {
	var count int64
	gdb.Model(&db.Artwork{}).Count(&count)
	if count > 0 {
		fmt.Println("作品已存在，跳过创建")
		return nil
	}

	year := 2024
	artworks := service.NewArtworkService(gdb)
	inputs := []service.ArtworkInput{
		{Title: "Stylized Fox", ImageURL: "https://picsum.photos/seed/fox/1200/900", Category: "3d", Subcategory: "Characters", ModelID: "0123456789abcdef0123456789abcdef", Medium: "Blender", Year: &year, Featured: true},
		{Title: "Desert Outpost", ImageURL: "https://picsum.photos/seed/outpost/1600/900", Category: "3d", Subcategory: "Environments", Medium: "Blender, Substance Painter", Year: &year},
		{Title: "Fox Spirit", ImageURL: "https://picsum.photos/seed/spirit/900/1200", Category: "2d", Subcategory: "Illustration", Medium: "Procreate", Year: &year, Tags: []string{"fantasy"}},
		{Title: "Harbor Study", ImageURL: "https://picsum.photos/seed/harbor/1200/1200", Category: "2d", Subcategory: "Concept Art", Medium: "Photoshop"},
		{Title: "Gion at Night", ImageURL: "https://picsum.photos/seed/gion/1500/1000", Category: "photography", Subcategory: "Street", Camera: "Fujifilm X-T4", Settings: "f/1.4 1/60s ISO 3200", Location: "Kyoto"},
		{Title: "Morning Fog", ImageURL: "https://picsum.photos/seed/fog/1000/1500", Category: "photography", Subcategory: "Landscape", Camera: "Fujifilm X-T4", Location: "Hokkaido"},
	}

	for _, input := range inputs {
		if _, err := artworks.Create(input); err != nil {
			return fmt.Errorf("create artwork %q: %w", input.Title, err)
		}
	}

	fmt.Printf("✅ %d 件作品创建完成\n", len(inputs))
	return nil
}
